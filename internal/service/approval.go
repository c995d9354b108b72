package service

import "context"

// ApprovalDecision is what the gate reports back for a submitted request.
type ApprovalDecision struct {
	Approved     bool
	ApproverName string
}

// ApprovalGate decides service requests. The current gate auto-approves on
// behalf of a named manager; a real workflow integration would slot in here.
type ApprovalGate interface {
	Submit(ctx context.Context, ticketID, requestItem, justification string) error
	Check(ctx context.Context, ticketID string) (ApprovalDecision, error)
}

type managerApprovalGate struct {
	approverName string
}

// NewManagerApprovalGate builds the auto-approving gate.
func NewManagerApprovalGate(approverName string) ApprovalGate {
	if approverName == "" {
		approverName = "Manager"
	}
	return &managerApprovalGate{approverName: approverName}
}

func (g *managerApprovalGate) Submit(ctx context.Context, ticketID, requestItem, justification string) error {
	return nil
}

func (g *managerApprovalGate) Check(ctx context.Context, ticketID string) (ApprovalDecision, error) {
	return ApprovalDecision{Approved: true, ApproverName: g.approverName}, nil
}
