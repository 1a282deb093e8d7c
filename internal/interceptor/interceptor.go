// Package interceptor 把故障注入与捕获串接进 http.RoundTripper 管线：
// 发出前注入延迟与失败短路，收到响应后应用重写规则，最后把完整事务入库。
package interceptor

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"github.com/ajinumoto/DebugSwift/internal/adapter/httpconv"
	"github.com/ajinumoto/DebugSwift/internal/capture"
	"github.com/ajinumoto/DebugSwift/internal/injector"
	"github.com/ajinumoto/DebugSwift/internal/logger"
	"github.com/ajinumoto/DebugSwift/pkg/injectspec"
	"github.com/ajinumoto/DebugSwift/pkg/traffic"
)

// Transport 注入式传输层
type Transport struct {
	base    http.RoundTripper
	inj     *injector.Injector
	capture *capture.Store
	log     logger.Logger
}

// New 创建注入式传输层，base 为 nil 时退回 http.DefaultTransport
func New(base http.RoundTripper, inj *injector.Injector, store *capture.Store, log logger.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Transport{base: base, inj: inj, capture: store, log: log}
}

// RoundTrip 依次执行：延迟注入、失败短路、真实请求、响应重写、捕获入库
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	neutral := httpconv.FromHTTPRequest(req)
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		neutral.Body = body
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	tx := traffic.NewTransaction(neutral)

	t.inj.ApplyDelay(neutral.URL, neutral.Method)

	if f := t.inj.DecideFailure(neutral.URL, neutral.Method); f != nil {
		if f.Kind == injectspec.FailureHTTPError {
			resp := synthesizeResponse(req, f.StatusCode)
			t.record(tx, nil, f.StatusCode, nil)
			return resp, nil
		}
		t.record(tx, nil, 0, f.Err)
		return nil, f.Err
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.record(tx, nil, 0, err)
		return nil, err
	}

	if rule := t.inj.MatchingRewriteRule(neutral.URL); rule != nil {
		t.log.Debug("应用响应重写规则", "url", neutral.URL, "pattern", rule.URLPattern)
		resp = t.applyRewrite(resp, rule)
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		t.record(tx, nil, resp.StatusCode, err)
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	tx.Response = httpconv.FromHTTPResponse(resp, body)
	t.record(tx, body, resp.StatusCode, nil)
	return resp, nil
}

// applyRewrite 整体替换响应体与状态码，并按路径应用 JSON 修补
func (t *Transport) applyRewrite(resp *http.Response, rule *injectspec.RewriteRule) *http.Response {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		body = nil
	}

	out := body
	if rule.ResponseBody != "" {
		out = []byte(rule.ResponseBody)
	}
	for _, p := range rule.BodyPatches {
		var patched []byte
		var perr error
		switch p.Op {
		case injectspec.PatchOpDelete:
			patched, perr = sjson.DeleteBytes(out, p.Path)
		default:
			patched, perr = sjson.SetBytes(out, p.Path, p.Value)
		}
		if perr != nil {
			t.log.Warn("应用 JSON 修补失败", "path", p.Path, "error", perr)
			continue
		}
		out = patched
	}

	if rule.ResponseStatusCode != nil {
		resp.StatusCode = *rule.ResponseStatusCode
		resp.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	resp.Body = io.NopCloser(bytes.NewReader(out))
	resp.ContentLength = int64(len(out))
	resp.Header.Del("Content-Encoding")
	resp.Header.Set("Content-Length", strconv.Itoa(len(out)))
	return resp
}

// record 把事务写入捕获仓库
func (t *Transport) record(tx *traffic.Transaction, respBody []byte, status int, err error) {
	if t.capture == nil {
		return
	}
	rec := &capture.Record{
		ID:           tx.ID,
		URL:          tx.Request.URL,
		Method:       tx.Request.Method,
		StatusCode:   status,
		RequestBody:  tx.Request.Body,
		ResponseBody: respBody,
		StartedAt:    tx.Start,
		Duration:     time.Since(tx.Start),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	t.capture.Add(rec)
}

// synthesizeResponse 构造代替真实响应的合成 HTTP 错误响应
func synthesizeResponse(req *http.Request, status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}
}
