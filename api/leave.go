package api

import (
	"context"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/session"
)

// Leave request status transitions happen server-side; the client only posts
// approve/reject.
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

type LeaveRequest struct {
	ID              int          `json:"id"`
	Student         session.User `json:"student"`
	LeaveType       string       `json:"leave_type"` // sick|casual|emergency|other
	StartDate       Date         `json:"start_date"`
	EndDate         Date         `json:"end_date"`
	Reason          string       `json:"reason"`
	Status          string       `json:"status"`
	ApprovedByName  null.String  `json:"approved_by_name"`
	RejectionReason string       `json:"rejection_reason"`
	DurationDays    int          `json:"duration_days"`
	CreatedAt       time.Time    `json:"created_at"`
}

type NewLeaveRequest struct {
	LeaveType string `json:"leave_type" validate:"required,oneof=sick casual emergency other"`
	StartDate Date   `json:"start_date" validate:"required"`
	EndDate   Date   `json:"end_date" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

func (in *NewLeaveRequest) Validate() error {
	in.Reason = core.CleanString(in.Reason)
	if err := core.Validate.Struct(in); err != nil {
		return err
	}
	if in.EndDate.Before(in.StartDate.Time) {
		return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "end date cannot precede start date"})
	}
	return nil
}

func (c *Client) LeaveRequests(ctx context.Context) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := c.getList(ctx, "/leave/", &leaves)
	return leaves, err
}

func (c *Client) CreateLeaveRequest(ctx context.Context, in NewLeaveRequest) (LeaveRequest, error) {
	var created LeaveRequest
	if err := in.Validate(); err != nil {
		return created, err
	}
	err := c.post(ctx, "/leave/", in, &created)
	return created, err
}

func (c *Client) ApproveLeave(ctx context.Context, id int) (LeaveRequest, error) {
	var leave LeaveRequest
	err := c.post(ctx, fmt.Sprintf("/leave/%d/approve/", id), nil, &leave)
	return leave, err
}

func (c *Client) RejectLeave(ctx context.Context, id int, reason string) (LeaveRequest, error) {
	payload := struct {
		RejectionReason string `json:"rejection_reason"`
	}{reason}

	var leave LeaveRequest
	err := c.post(ctx, fmt.Sprintf("/leave/%d/reject/", id), payload, &leave)
	return leave, err
}
