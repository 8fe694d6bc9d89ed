package config

type UploadConfig struct {
	AllowedMimeTypes []string
	// AllowedExtensions пустой - расширение не проверяется
	AllowedExtensions []string
	MaxSizeMB         int64
	PathPrefix        string
}

const (
	UploadAssetImage    = "asset_image"
	UploadAssetDocument = "asset_document"
	UploadAssetImport   = "asset_import"
)

var UploadContexts = map[string]UploadConfig{
	UploadAssetImage: {
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		MaxSizeMB:        10,
		PathPrefix:       "assets/images",
	},
	// счета, акты, гарантийные талоны
	UploadAssetDocument: {
		AllowedMimeTypes:  []string{"application/pdf", "image/jpeg", "image/png", "application/zip"},
		AllowedExtensions: []string{".pdf", ".jpg", ".jpeg", ".png", ".docx", ".xlsx"},
		MaxSizeMB:         20,
		PathPrefix:        "assets/documents",
	},
	// xlsx по сигнатуре - обычный zip, поэтому нужен и список расширений
	UploadAssetImport: {
		AllowedMimeTypes:  []string{"application/zip"},
		AllowedExtensions: []string{".xlsx"},
		MaxSizeMB:         15,
		PathPrefix:        "imports",
	},
}
