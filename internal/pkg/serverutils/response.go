package serverutils

// Response is the envelope every endpoint returns.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code, message string) ErrResponse {
	return ErrResponse{
		Success: false,
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	}
}
