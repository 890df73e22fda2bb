package handler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vterekhov/authgate/internal/apierr"
	"github.com/vterekhov/authgate/internal/logger"
	"github.com/vterekhov/authgate/internal/model"
)

// handleError translates service failures into gRPC statuses. Classified
// kinds map one-to-one onto codes; anything else is reported as Internal
// with a generic message, logged with its cause but opaque to the caller.
func handleError(err error, log *logger.Logger) error {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return status.Error(kindToCode(apiErr.Kind), formatMessage(apiErr))
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "record not found")
	default:
		log.Error("unclassified error", "error", err.Error())
		return status.Error(codes.Internal, "internal server error")
	}
}

func (h *Auth) handleError(err error) error {
	return handleError(err, h.logger)
}

func kindToCode(kind apierr.Kind) codes.Code {
	switch kind {
	case apierr.KindValidation:
		return codes.InvalidArgument
	case apierr.KindAlreadyExists:
		return codes.AlreadyExists
	case apierr.KindInvalidCredentials:
		return codes.Unauthenticated
	case apierr.KindTokenExpired:
		return codes.Unauthenticated
	case apierr.KindInvalidPayload:
		return codes.InvalidArgument
	case apierr.KindUserNotFound:
		return codes.NotFound
	default:
		return codes.Internal
	}
}

// formatMessage appends field-level detail to validation failures so the
// caller learns every violated precondition at once.
func formatMessage(apiErr *apierr.Error) string {
	if apiErr.Kind != apierr.KindValidation || len(apiErr.Fields) == 0 {
		return apiErr.Message
	}

	fields := make([]string, 0, len(apiErr.Fields))
	for name := range apiErr.Fields {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", name, apiErr.Fields[name]))
	}

	return fmt.Sprintf("%s: %s", apiErr.Message, strings.Join(parts, "; "))
}
