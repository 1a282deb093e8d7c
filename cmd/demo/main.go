package main

import (
	"fmt"
	"io"
	"os"
	"time"

	api "github.com/ajinumoto/DebugSwift/pkg/api"
	"github.com/ajinumoto/DebugSwift/pkg/injectspec"
)

// main 演示注入管线：配置延迟与重写规则后发出真实请求，
// 最后打印捕获仓库中的事务记录。
func main() {
	cfgPath := os.Getenv("DEBUGSWIFT_CONFIG")
	cfg, err := api.LoadConfig(cfgPath)
	if err != nil {
		fmt.Println("load config error:", err)
		return
	}

	svc, err := api.NewService(api.Options{Config: cfg})
	if err != nil {
		fmt.Println("new service error:", err)
		return
	}
	defer svc.Close()

	fixed := 300 * time.Millisecond
	svc.SetDelayConfig(injectspec.DelayConfig{
		Enabled:    true,
		FixedDelay: &fixed,
	})

	if err = svc.SubmitRewriteRule(injectspec.RuleSubmission{
		URLPattern:   "*example.com*",
		ResponseBody: `{"demo":true}`,
	}); err != nil {
		fmt.Println("submit rule error:", err)
		return
	}
	rewrite := svc.RewriteConfig()
	rewrite.Enabled = true
	svc.SetRewriteConfig(rewrite)

	go func() {
		for ev := range svc.CaptureEvents() {
			if ev.Record != nil {
				fmt.Println("capture event:", ev.Type, "url:", ev.Record.URL)
			} else {
				fmt.Println("capture event:", ev.Type)
			}
		}
	}()

	client := svc.Client()
	target := os.Getenv("DEMO_URL")
	if target == "" {
		target = "https://example.com/"
	}

	startAt := time.Now()
	resp, err := client.Get(target)
	if err != nil {
		fmt.Println("request error:", err)
	} else {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		fmt.Printf("status=%d elapsed=%s body=%s\n",
			resp.StatusCode, time.Since(startAt).Round(time.Millisecond), truncate(body, 128))
	}

	for _, r := range svc.Records() {
		fmt.Printf("record seq=%d method=%s url=%s status=%d duration=%s\n",
			r.SequenceIndex, r.Method, r.URL, r.StatusCode, r.Duration)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
