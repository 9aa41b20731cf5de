package service

import (
	"errors"
	"fmt"
)

// ErrorKind 业务错误分类，由 handler 映射为 HTTP 状态码
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindPermissionDenied
	KindUnauthenticated
)

// ErrEmailTaken 邮箱已被注册
var ErrEmailTaken = errors.New("user with this email already exists")

// AppError 业务错误
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewNotFoundError resource 为缺失的实体名，例如 "Post"
func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found."}
}

func NewPermissionDeniedError(message string) *AppError {
	return &AppError{Kind: KindPermissionDenied, Message: message}
}

func NewUnauthenticatedError(message string, err error) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message, Err: err}
}

func NewInternalError(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// KindOf 返回错误分类，非 AppError 视为内部错误
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
