package auth

import "context"

type ctxKey string

const contextStaffKey ctxKey = "staff"

// StaffContext identifies the staff member and station a request acts for.
// It is resolved once per request by the auth middleware and never
// re-queried mid-operation.
type StaffContext struct {
	StaffID   string
	StationID string
	Name      string
}

func StaffFromContext(ctx context.Context) (*StaffContext, bool) {
	if ctx == nil {
		return nil, false
	}
	staff, ok := ctx.Value(contextStaffKey).(*StaffContext)
	return staff, ok
}

func ContextWithStaff(ctx context.Context, staff *StaffContext) context.Context {
	return context.WithValue(ctx, contextStaffKey, staff)
}
