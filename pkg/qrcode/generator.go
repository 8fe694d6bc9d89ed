package qrcode

import (
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// GeneratorInterface строит PNG с QR-кодом для содержимого (код актива).
type GeneratorInterface interface {
	PNG(content string) ([]byte, error)
}

type Generator struct {
	size  int
	level goqrcode.RecoveryLevel
}

func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = defaultSize
	}
	return &Generator{size: size, level: goqrcode.Medium}
}

func (g *Generator) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("пустое содержимое QR-кода")
	}
	png, err := goqrcode.Encode(content, g.level, g.size)
	if err != nil {
		return nil, fmt.Errorf("не удалось сгенерировать QR-код: %w", err)
	}
	return png, nil
}
