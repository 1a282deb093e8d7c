package traffic

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header 封装通用的头部操作
type Header map[string]string

// Get 获取指定 Header 的值（大小写不敏感）
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h[strings.ToLower(key)]
}

// Set 设置指定 Header 的值（自动转换为小写）
func (h Header) Set(key, value string) {
	h[strings.ToLower(key)] = value
}

// Del 删除指定 Header
func (h Header) Del(key string) {
	delete(h, strings.ToLower(key))
}

// Request 中立的请求模型
type Request struct {
	URL     string // 完整URL
	Method  string // HTTP方法
	Headers Header // 请求头
	Body    []byte // 请求体原始数据
}

// Response 中立的响应模型
type Response struct {
	StatusCode int    // 状态码
	Headers    Header // 响应头
	Body       []byte // 响应体数据
}

// Transaction 一次被观察的请求事务。
// 在拦截器首次观察到请求时构造，显式携带生成的事务ID与开始时间，
// 之后全程显式传递，不依赖任何隐藏的旁路存储。
type Transaction struct {
	ID       string
	Request  *Request
	Response *Response // 收到响应后由拦截器补齐，失败短路时保持 nil
	Start    time.Time
}

// NewTransaction 包装请求并生成事务ID
func NewTransaction(req *Request) *Transaction {
	return &Transaction{
		ID:      uuid.NewString(),
		Request: req,
		Start:   time.Now(),
	}
}

// NewRequest 创建初始化请求对象
func NewRequest() *Request {
	return &Request{Headers: make(Header)}
}

// NewResponse 创建初始化响应对象
func NewResponse() *Response {
	return &Response{
		StatusCode: http.StatusOK,
		Headers:    make(Header),
	}
}
