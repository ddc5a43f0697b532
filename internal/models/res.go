package models

type ApiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data"`
}

func SuccessResponse(data any, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// CollectionResponse always carries the item count, including zero.
func CollectionResponse(data any, count int) ApiResponse {
	return ApiResponse{
		Success: true,
		Count:   &count,
		Data:    data,
	}
}
