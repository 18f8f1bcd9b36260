package constants

import (
	"time"

	"chequeos-rutinas/internal/storage"
)

type JornadaTask struct {
	ID   string         `json:"id"`
	Text string         `json:"text"`
	Days []time.Weekday `json:"days,omitempty"` // пусто — каждый день
}

// AppliesOn — задача выполняется в этот день недели.
func (t JornadaTask) AppliesOn(day time.Weekday) bool {
	if len(t.Days) == 0 {
		return true
	}
	for _, d := range t.Days {
		if d == day {
			return true
		}
	}
	return false
}

var (
	MorningTasks = []JornadaTask{
		{ID: "m1", Text: "Marcar tarjeta"},
		{ID: "m2", Text: "Desactivar alarma"},
		{ID: "m3", Text: "Reenviar conciliaciones a Manuel Rojas"},
		{ID: "m4", Text: "Cambiar cinta de respaldo"},
		{ID: "m-cam", Text: "Verificar Cámaras"},
		// вторник–суббота
		{ID: "m5", Text: "Realizar proceso de liquidación encomienda de gerencia", Days: []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}},
		// праздники не учитываются
		{ID: "m6", Text: "Registrar nómina de pasajeros", Days: []time.Weekday{time.Sunday, time.Saturday}},
	}

	AfternoonTasks = []JornadaTask{
		{ID: "a1", Text: "Inicializar cinta encomiendas"},
		{ID: "a2", Text: "Ejecutar respaldo encomiendas", Days: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}},
		{ID: "a3", Text: "Inicializar cinta pasajes"},
		{ID: "a4", Text: "Ejecutar respaldo pasajes"},
		{ID: "a-cam", Text: "Verificar Cámaras"},
		{ID: "a5", Text: "Revisar luces del edificio (apagar si están encendidas)"},
		{ID: "a6", Text: "Cerrar ventanas abiertas"},
		{ID: "a7", Text: "Ajustar calefactor al mínimo (para que se apague)"},
		{ID: "a8", Text: "Marcar tarjeta"},
		{ID: "a9", Text: "Activar alarma"},
		{ID: "a10", Text: "Dejar llave de puerta principal en su caja y entregarla al guardia"},
		{ID: "a11", Text: "Traspasar número de soporte a celular (14:00 hrs)", Days: []time.Weekday{time.Sunday, time.Saturday}},
		{ID: "a12", Text: "Quitar el traspaso telefónico (20:30 hrs)", Days: []time.Weekday{time.Sunday, time.Saturday}},
	}
)

var taskText = func() map[string]string {
	m := make(map[string]string, len(MorningTasks)+len(AfternoonTasks))
	for _, t := range MorningTasks {
		m[t.ID] = t.Text
	}
	for _, t := range AfternoonTasks {
		m[t.ID] = t.Text
	}
	return m
}()

func TasksForShift(shift storage.Shift) []JornadaTask {
	switch shift {
	case storage.ShiftMorning:
		return MorningTasks
	case storage.ShiftAfternoon:
		return AfternoonTasks
	}
	return nil
}

// ApplicableTasks — задачи смены, которые можно отметить в этот день.
func ApplicableTasks(shift storage.Shift, day time.Weekday) []JornadaTask {
	var out []JornadaTask
	for _, t := range TasksForShift(shift) {
		if t.AppliesOn(day) {
			out = append(out, t)
		}
	}
	return out
}

func TaskText(id string) (string, bool) {
	text, ok := taskText[id]
	return text, ok
}
