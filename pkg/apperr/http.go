package apperr

import "net/http"

// HTTPStatus 将业务错误映射为HTTP状态码。
// 未知错误一律映射为500，由调用方决定对外展示的文案。
func HTTPStatus(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyOwned(err):
		return http.StatusConflict
	case IsInsufficientFunds(err):
		return http.StatusPaymentRequired
	case IsConflict(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
