package respond

import (
	"regexp"
)

var (
	// NewsAPI のキーはクエリ文字列とヘッダーの両方で送られる
	apiKeyQueryPattern  = regexp.MustCompile(`(?i)(apiKey=)[^&\s"]+`)
	apiKeyHeaderPattern = regexp.MustCompile(`(?i)(X-Api-Key:\s*)\S+`)

	// Authorization: Bearer <jwt>
	bearerPattern = regexp.MustCompile(`(?i)(Bearer\s+)[A-Za-z0-9\-_=]+\.[A-Za-z0-9\-_=]+\.?[A-Za-z0-9\-_.+/=]*`)

	// データベースパスワードパターン（DSN内）
	dbPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error())
}

// SanitizeString masks API keys, bearer tokens and DSN passwords in msg.
func SanitizeString(msg string) string {
	msg = apiKeyQueryPattern.ReplaceAllString(msg, "${1}****")
	msg = apiKeyHeaderPattern.ReplaceAllString(msg, "${1}****")
	msg = bearerPattern.ReplaceAllString(msg, "${1}****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
