package remote

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"agent-dispatch/internal/agent"
)

var (
	errInvalidJSON = errors.New("response body is not valid JSON")
	errNullBody    = errors.New("response body is null")
)

// parseAPIError turns a non-success response into an APIError. A truthy "detail"
// member is replaced by guidance when the agent has one.
func parseAPIError(name string, status int, body []byte, guidance string) *agent.APIError {
	apiErr := &agent.APIError{Agent: name, Status: status}

	if !gjson.ValidBytes(body) {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	detail := gjson.GetBytes(body, "detail")
	if truthy(detail) {
		apiErr.Detail = stringify(detail)
		if guidance != "" {
			apiErr.Message = guidance
		} else {
			apiErr.Message = apiErr.Detail
		}
		return apiErr
	}

	apiErr.Message = gjson.GetBytes(body, "@ugly").Raw
	return apiErr
}

// extractReply returns the first truthy value among fields, or "" when none is set.
func extractReply(body []byte, fields []string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errInvalidJSON
	}
	if gjson.ParseBytes(body).Type == gjson.Null {
		return "", errNullBody
	}

	for _, field := range fields {
		value := gjson.GetBytes(body, field)
		if truthy(value) {
			return stringify(value), nil
		}
	}
	return "", nil
}

func truthy(value gjson.Result) bool {
	switch value.Type {
	case gjson.String:
		return value.Str != ""
	case gjson.Number:
		return value.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

func stringify(value gjson.Result) string {
	switch value.Type {
	case gjson.String:
		return value.Str
	case gjson.JSON:
		return gjson.Get(value.Raw, "@ugly").Raw
	default:
		return value.Raw
	}
}
