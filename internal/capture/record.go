package capture

import (
	"time"
)

// Record 捕获的请求/响应记录。
// SequenceIndex 在入库时一次性分配，等于入库前的仓库大小，之后不再变化。
type Record struct {
	ID            string        `json:"id"`
	URL           string        `json:"url"`
	Method        string        `json:"method,omitempty"`
	StatusCode    int           `json:"statusCode,omitempty"`
	RequestBody   []byte        `json:"requestBody,omitempty"`
	ResponseBody  []byte        `json:"responseBody,omitempty"`
	IsEncrypted   bool          `json:"isEncrypted"`
	DecryptedBody []byte        `json:"decryptedBody,omitempty"`
	SequenceIndex int           `json:"sequenceIndex"`
	StartedAt     time.Time     `json:"startedAt,omitempty"`
	Duration      time.Duration `json:"duration,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// Cipher 加密协作方的能力集合。
// 本引擎不实现任何加密算法，只消费宿主注入的实现。
type Cipher interface {
	// IsEncrypted 判断字节序列是否像密文
	IsEncrypted(data []byte) bool

	// CustomDecrypt 按 URL 执行自定义解密，无法解密时返回空
	CustomDecrypt(data []byte, url string) []byte

	// DecryptionKey 按 URL 查找解密密钥，找不到时返回空
	DecryptionKey(url string) []byte

	// Decrypt 用给定密钥解密，失败时返回空
	Decrypt(data []byte, key []byte) []byte
}

// Event 仓库变更事件
type Event struct {
	Type   string  `json:"type"`
	Record *Record `json:"record,omitempty"`
}

// 事件类型
const (
	EventAdded   = "added"
	EventRemoved = "removed"
	EventCleared = "cleared"
)
