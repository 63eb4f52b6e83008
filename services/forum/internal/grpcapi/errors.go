package grpcapi

import (
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const errorDomain = "forum"

func errInvalidArgument(code, msg, field, desc string) error {
	st := status.New(codes.InvalidArgument, msg)
	info := &errdetails.ErrorInfo{Reason: code, Domain: errorDomain}
	bad := &errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{{Field: field, Description: desc}},
	}
	st2, err := st.WithDetails(info, bad)
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}

// errNotPersisted reports a mutation that is live in memory but was not saved.
func errNotPersisted(cause error) error {
	st := status.New(codes.Unavailable, "change applied but not persisted")
	info := &errdetails.ErrorInfo{
		Reason:   "STORAGE_UNAVAILABLE",
		Domain:   errorDomain,
		Metadata: map[string]string{"applied": "true", "cause": cause.Error()},
	}
	st2, err := st.WithDetails(info)
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}
