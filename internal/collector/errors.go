package collector

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/go-github/v55/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	apperrors "github.com/kurihiro0119/repo-analyzer/internal/errors"
)

// classifyError maps a go-github error onto the application error taxonomy
func classifyError(err error, repo domain.RepoID) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return apperrors.NewRateLimitedError(detach(err))
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return apperrors.NewNotFoundError("Repository " + repo.String())
		case http.StatusUnauthorized:
			return apperrors.NewUnauthorizedError(respErr.Message)
		case http.StatusForbidden, http.StatusTooManyRequests:
			if respErr.Response.StatusCode == http.StatusTooManyRequests ||
				strings.Contains(strings.ToLower(respErr.Message), "rate limit") {
				return apperrors.NewRateLimitedError(detach(err))
			}
			return apperrors.NewForbiddenError(respErr.Message)
		}
	}

	return apperrors.NewInternalError(err.Error(), detach(err))
}

// detach replaces go-github errors, which hold the live *http.Response, with a
// copy carrying only the message and status. Errors handed to the logger must
// not reference the response: masq clones log values by reflection.
func detach(err error) error {
	var respErr *github.ErrorResponse
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var resp *http.Response
	switch {
	case errors.As(err, &respErr):
		resp = respErr.Response
	case errors.As(err, &rateErr):
		resp = rateErr.Response
	case errors.As(err, &abuseErr):
		resp = abuseErr.Response
	default:
		return err
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	return goerr.New(err.Error(), goerr.V("status", status))
}
