package generate_excel

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"chequeos-rutinas/internal/service/history"
	"chequeos-rutinas/internal/storage"
)

const (
	CameraSheet  = "Cámaras"
	JornadaSheet = "Jornadas"
	Unknown      = "desconocida"
)

type GenerateExcelStorage interface {
	CameraHistory() []storage.CameraCheckRecord
	JornadaHistory() []storage.JornadaCheckRecord
	Servers() []storage.Server
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

// GenerateExcel — отчёт по истории проверок: лист камер и лист смен.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, filter history.Filter) ([]byte, error) {
	const op = "service.generate_excel.GenerateExcel"

	cameraRecords := history.FilterCamera(g.storage.CameraHistory(), filter)
	jornadaRecords := history.FilterJornada(g.storage.JornadaHistory(), filter)
	servers := g.storage.Servers()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CameraSheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := f.NewSheet(JornadaSheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// --- СТИЛИ ---
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: стиль шапки: %w", op, err)
	}

	cameraHeaders := []string{"Fecha", "Operador", "Servidor", "Servidor OK", "Ubicación", "IP cámara", "Estado", "Observación", "Observaciones generales"}
	writeHeader(f, CameraSheet, cameraHeaders, headerStyle)

	row := 2
	for _, rec := range cameraRecords {
		view := history.ResolveCameraRecord(rec, servers)

		if len(view.Servers) == 0 && len(view.Unresolved) == 0 {
			writeRow(f, CameraSheet, row, rec.Date, rec.Operator, "", "", "", "", "", "", rec.GeneralObservations)
			row++
			continue
		}
		for _, group := range view.Servers {
			for _, c := range group.Cameras {
				writeRow(f, CameraSheet, row, rec.Date, rec.Operator, group.IP, yesNo(group.OK),
					c.Camera.Location, c.Camera.IP, statusLabel(c.State.Status), c.State.Observation, rec.GeneralObservations)
				row++
			}
		}
		// камера удалена из списка после проверки
		for _, u := range view.Unresolved {
			writeRow(f, CameraSheet, row, rec.Date, rec.Operator, Unknown, "",
				Unknown, "", statusLabel(u.State.Status), u.State.Observation, rec.GeneralObservations)
			row++
		}
	}

	jornadaHeaders := []string{"Fecha", "Operador", "Turno", "Tareas completadas", "Observaciones"}
	writeHeader(f, JornadaSheet, jornadaHeaders, headerStyle)

	for i, rec := range jornadaRecords {
		view := history.ResolveJornadaRecord(rec)
		tasks := make([]string, 0, len(view.Tasks))
		for _, t := range view.Tasks {
			tasks = append(tasks, t.Text)
		}
		writeRow(f, JornadaSheet, i+2, rec.Date, rec.Operator, string(rec.Shift), strings.Join(tasks, "; "), rec.Observations)
	}

	// --- ФИНАЛЬНЫЕ ШТРИХИ ---
	for _, sheet := range []string{CameraSheet, JornadaSheet} {
		f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
		})
		f.SetColWidth(sheet, "A", "I", 20)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), style)
}

func writeRow(f *excelize.File, sheet string, row int, values ...string) {
	for i, v := range values {
		f.SetCellValue(sheet, cellName(i+1, row), v)
	}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func yesNo(ok bool) string {
	if ok {
		return "Sí"
	}
	return "No"
}

func statusLabel(s storage.DeviceStatus) string {
	switch s {
	case storage.StatusOK:
		return "OK"
	case storage.StatusNoConnection:
		return "SC"
	case storage.StatusInRepair:
		return "ER"
	default:
		return "No Rev."
	}
}
