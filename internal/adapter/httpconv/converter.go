package httpconv

import (
	"net/http"

	"github.com/ajinumoto/DebugSwift/pkg/traffic"
)

// FromHTTPRequest 将标准库请求转换为中立 Request 模型
func FromHTTPRequest(r *http.Request) *traffic.Request {
	req := traffic.NewRequest()
	req.URL = r.URL.String()
	req.Method = r.Method
	for k := range r.Header {
		req.Headers.Set(k, r.Header.Get(k))
	}
	return req
}

// FromHTTPResponse 将标准库响应转换为中立 Response 模型，Body 由调用方单独采集
func FromHTTPResponse(r *http.Response, body []byte) *traffic.Response {
	resp := traffic.NewResponse()
	resp.StatusCode = r.StatusCode
	for k := range r.Header {
		resp.Headers.Set(k, r.Header.Get(k))
	}
	resp.Body = body
	return resp
}
