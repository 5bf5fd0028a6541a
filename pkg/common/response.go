package common

import "net/http"

// HttpResponse HTTP响应结构
type HttpResponse struct {
	Code    int         `json:"code"`    // 响应码
	Message string      `json:"message"` // 响应消息
	Data    interface{} `json:"data"`    // 响应数据
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *HttpResponse {
	return &HttpResponse{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *HttpResponse {
	return &HttpResponse{
		Code:    code,
		Message: message,
	}
}
