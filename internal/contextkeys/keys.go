package contextkeys

import "context"

type messageTypeKey struct{}
type langKey struct{}
type callbackDataKey struct{}
type documentKey struct{}
type archiveURLKey struct{}

type MessageType string

const (
	MessageTypeCommand     MessageType = "command"
	MessageTypeDocument    MessageType = "document"
	MessageTypeArchiveURL  MessageType = "archive_url"
	MessageTypeText        MessageType = "text"
	MessageTypeClickButton MessageType = "clickButton"
	MessageTypeUnknown     MessageType = "unknown"
)

type DocumentInfo struct {
	FileID   string
	FileName string
	FileSize int64
}

func WithMessageType(ctx context.Context, t MessageType) context.Context {
	return context.WithValue(ctx, messageTypeKey{}, t)
}

func GetMessageType(ctx context.Context) (MessageType, bool) {
	v := ctx.Value(messageTypeKey{})
	if v == nil {
		return MessageTypeUnknown, false
	}
	return v.(MessageType), true
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

func GetLang(ctx context.Context) (string, bool) {
	v := ctx.Value(langKey{})
	if v == nil {
		return "", false
	}
	return v.(string), true
}

func WithCallbackData(ctx context.Context, data string) context.Context {
	return context.WithValue(ctx, callbackDataKey{}, data)
}

func GetCallbackData(ctx context.Context) (string, bool) {
	v := ctx.Value(callbackDataKey{})
	if v == nil {
		return "", false
	}
	return v.(string), true
}

func WithDocumentInfo(ctx context.Context, info *DocumentInfo) context.Context {
	return context.WithValue(ctx, documentKey{}, info)
}

func GetDocumentInfo(ctx context.Context) (*DocumentInfo, bool) {
	v := ctx.Value(documentKey{})
	if v == nil {
		return nil, false
	}
	return v.(*DocumentInfo), true
}

func WithArchiveURL(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, archiveURLKey{}, url)
}

func GetArchiveURL(ctx context.Context) (string, bool) {
	v := ctx.Value(archiveURLKey{})
	if v == nil {
		return "", false
	}
	return v.(string), true
}
