package util

import "errors"

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrEmailNotWhitelisted  = errors.New("email not whitelisted for registration")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserDisabled         = errors.New("account disabled")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrPaperNotFound        = errors.New("paper not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptNotInProgress = errors.New("attempt is not in progress")
	ErrNoActiveQuestions    = errors.New("no active questions for the requested scope")
	ErrNotAdaptiveAttempt   = errors.New("attempt is not an adaptive test")
	ErrQuestionNotServed    = errors.New("question was not served in this attempt")
	ErrAdaptiveAnswerFlow   = errors.New("adaptive attempts accept answers through the next-question flow only")
)
