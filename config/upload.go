package config

type UploadConfig struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
	MaxDimension     int // 0 - не уменьшать
	PathPrefix       string
}

var UploadContexts = map[string]UploadConfig{
	"order_photo": {
		AllowedMimeTypes: []string{"image/jpeg", "image/png"},
		MaxSizeMB:        16,
		MaxDimension:     1600,
		PathPrefix:       "orders",
	},
}
