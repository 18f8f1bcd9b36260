// Package extract разбирает ответ модели распознавания со списком камер.
// Сам вызов модели подключается снаружи через Extractor.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"chequeos-rutinas/internal/storage"
)

const NotAvailable = "N/A"

// Prompt — инструкция для модели, формат строки камеры: 'Ciudad Sección Número Ubicación(IP)'.
const Prompt = `Extrae todos los detalles de las cámaras de la imagen. Cada línea de cámara sigue el patrón 'Ciudad Sección Número Ubicación(IP)'. ` +
	`Convierte cada línea detectada en un objeto JSON. Proporciona un único array JSON como salida. ` +
	`Cada objeto debe tener: "city", "section", "number", "location", y "ip". ` +
	`Extrae la IP de los paréntesis. Ignora texto irrelevante. Si falta información en una línea, usa 'N/A'. ` +
	`El resultado DEBE ser un array JSON válido, incluso si está vacío.`

var ErrEmptyImage = errors.New("empty image")

type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Cameras отправляет изображение в модель и разбирает ответ.
func Cameras(ctx context.Context, ext Extractor, image []byte, mimeType string) ([]storage.Camera, error) {
	const op = "service.extract.Cameras"

	if len(image) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyImage)
	}

	text, err := ext.Extract(ctx, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cameras, err := ParseCameras(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cameras, nil
}

type rawCamera struct {
	City     *string `json:"city"`
	Section  *string `json:"section"`
	Number   *string `json:"number"`
	Location *string `json:"location"`
	IP       *string `json:"ip"`
}

// ParseCameras снимает обёртку ```json ... ```, разбирает массив
// и выдаёт каждой камере новый id.
func ParseCameras(text string) ([]storage.Camera, error) {
	const op = "service.extract.ParseCameras"

	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var raw []rawCamera
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%s: разбор ответа: %w", op, err)
	}

	cameras := make([]storage.Camera, 0, len(raw))
	for _, r := range raw {
		cameras = append(cameras, storage.Camera{
			ID:       "cam_" + uuid.NewString(),
			City:     orNA(r.City),
			Section:  orNA(r.Section),
			Number:   orNA(r.Number),
			Location: orNA(r.Location),
			IP:       orNA(r.IP),
		})
	}
	return cameras, nil
}

func orNA(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return NotAvailable
	}
	return strings.TrimSpace(*s)
}
