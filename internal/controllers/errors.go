package controllers

import (
	"context"
	"errors"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-playground/validator/v10"
)

// 错误 reason 常量，随 Kratos 错误体返回给调用方。
const (
	reasonInvalidArgument = "INVALID_ARGUMENT"
	reasonNotFound        = "NOT_FOUND"
	reasonConflict        = "CONFLICT"
	reasonMetadataFetch   = "METADATA_FETCH_FAILED"
	reasonUnavailable     = "UNAVAILABLE"
	reasonInternal        = "INTERNAL"
)

const statusBadGateway = 502

var validate = validator.New(validator.WithRequiredStructEnabled())

// mapServiceError 将业务错误类别映射为带 HTTP 状态码的 Kratos 错误。
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return kerrors.BadRequest(reasonInvalidArgument, err.Error())
	case errors.Is(err, services.ErrInvalidArgument):
		return kerrors.BadRequest(reasonInvalidArgument, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return kerrors.NotFound(reasonNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		return kerrors.Conflict(reasonConflict, err.Error())
	case errors.Is(err, services.ErrMetadataFetch):
		return kerrors.New(statusBadGateway, reasonMetadataFetch, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return kerrors.ServiceUnavailable(reasonUnavailable, err.Error())
	default:
		return kerrors.InternalServer(reasonInternal, err.Error())
	}
}

func badRequest(err error) error {
	return kerrors.BadRequest(reasonInvalidArgument, err.Error())
}
