// Package render рисует недельное расписание учителя в PNG
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/formatting"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	imageWidth  = 1400
	imageHeight = 900

	daysInWeek   = 7
	marginX      = 24.0
	titleHeight  = 70.0
	dayRowHeight = 50.0
	footerHeight = 50.0
	hourColWidth = 64.0
	cellInset    = 4.0

	defaultFirstHour = 8
	defaultLastHour  = 20
)

var (
	colorBackground = color.RGBA{247, 248, 250, 255}
	colorWeekend    = color.RGBA{238, 240, 243, 255}
	colorToday      = color.RGBA{255, 236, 230, 255}
	colorGrid       = color.RGBA{210, 213, 218, 255}
	colorText       = color.RGBA{55, 60, 66, 255}
	colorMuted      = color.RGBA{120, 126, 133, 255}
	colorNow        = color.RGBA{230, 70, 60, 255}
)

// slotPalette заливка и подпись слота для каждого статуса
var slotPalette = map[model.SlotStatus]struct {
	fill, text color.Color
	label      string
}{
	model.SlotStatusAvailable: {color.RGBA{126, 190, 98, 255}, color.RGBA{22, 50, 18, 255}, "Available"},
	model.SlotStatusBooked:    {color.RGBA{244, 170, 180, 255}, color.RGBA{110, 30, 42, 255}, "Booked"},
}

// legendOrder порядок статусов в легенде
var legendOrder = []model.SlotStatus{model.SlotStatusAvailable, model.SlotStatusBooked}

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	faceCacheMu sync.Mutex
	faceCache   = make(map[faceKey]font.Face)
)

type faceKey struct {
	size float64
	bold bool
}

// fontFace шрифт Go нужного размера; если разобрать не удалось, basicfont
func fontFace(size float64, bold bool) font.Face {
	fontsOnce.Do(func() {
		regularFont, _ = opentype.Parse(goregular.TTF)
		boldFont, _ = opentype.Parse(gobold.TTF)
	})

	src := regularFont
	if bold {
		src = boldFont
	}
	if src == nil {
		return basicfont.Face7x13
	}

	faceCacheMu.Lock()
	defer faceCacheMu.Unlock()

	key := faceKey{size: size, bold: bold}
	if face, ok := faceCache[key]; ok {
		return face
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	faceCache[key] = face
	return face
}

// hourRange видимые часы [start, end)
type hourRange struct {
	start int
	end   int
	total int
}

// calculateHourRange часы, которые покрывают все слоты, плюс час сверху и снизу.
// Пустая неделя показывается с 8 до 20.
func calculateHourRange(slots []*model.AvailabilitySlot) hourRange {
	first, last := defaultFirstHour, defaultLastHour
	if len(slots) > 0 {
		first, last = 24, 0
		for _, slot := range slots {
			first = min(first, slot.StartTime.Hour())
			// Слоты часовые, но конец вида 10:30 округляем вверх
			last = max(last, (int(slot.EndTime)+59)/60)
		}
		first, last = max(first-1, 0), min(last+1, 24)
	}
	return hourRange{start: first, end: last, total: last - first}
}

// groupByWeekday раскладывает слоты по дню недели (0 = понедельник), остальные отбрасывает
func groupByWeekday(weekStart time.Time, slots []*model.AvailabilitySlot) map[int][]*model.AvailabilitySlot {
	byDay := make(map[int][]*model.AvailabilitySlot)
	for _, slot := range slots {
		day := int(model.DateOf(slot.SlotDate).Sub(weekStart).Hours() / 24)
		if day >= 0 && day < daysInWeek {
			byDay[day] = append(byDay[day], slot)
		}
	}
	return byDay
}

// grid геометрия сетки: столбец на день, строка на час
type grid struct {
	left, top float64
	colWidth  float64
	rowHeight float64
	hours     hourRange
}

func newGrid(hours hourRange) grid {
	left := marginX + hourColWidth
	top := titleHeight + dayRowHeight
	return grid{
		left:      left,
		top:       top,
		colWidth:  (imageWidth - left - marginX) / daysInWeek,
		rowHeight: (imageHeight - top - footerHeight) / float64(hours.total),
		hours:     hours,
	}
}

func (g grid) x(day int) float64 { return g.left + float64(day)*g.colWidth }

// y вертикальная позиция времени суток
func (g grid) y(c model.Clock) float64 {
	return g.top + (float64(c)/60-float64(g.hours.start))*g.rowHeight
}

func (g grid) bottom() float64 { return g.top + float64(g.hours.total)*g.rowHeight }

func (g grid) right() float64 { return g.x(daysInWeek) }

// WeekRenderer рисует неделю Пн-Вс со слотами учителя
type WeekRenderer struct {
	location *time.Location
	now      func() time.Time
}

func NewWeekRenderer(location *time.Location) *WeekRenderer {
	if location == nil {
		location = time.UTC
	}
	return &WeekRenderer{location: location, now: time.Now}
}

// Render рисует неделю, в которую попадает weekStart
func (r *WeekRenderer) Render(title string, weekStart time.Time, slots []*model.AvailabilitySlot) ([]byte, error) {
	start := formatting.WeekStart(weekStart)
	byDay := groupByWeekday(start, slots)

	var visible []*model.AvailabilitySlot
	for _, daySlots := range byDay {
		visible = append(visible, daySlots...)
	}
	g := newGrid(calculateHourRange(visible))

	now := r.now().In(r.location)
	today := -1
	if d := int(model.DateOf(now).Sub(start).Hours() / 24); !model.DateOf(now).Before(start) && d < daysInWeek {
		today = d
	}

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(colorBackground)
	dc.Clear()

	drawTitle(dc, title, start)
	drawColumns(dc, g, start, today)
	drawHourGrid(dc, g)
	for day, daySlots := range byDay {
		for _, slot := range daySlots {
			drawSlot(dc, g, day, slot)
		}
	}
	if today >= 0 {
		drawNow(dc, g, today, model.NewClock(now.Hour(), now.Minute()))
	}
	drawLegend(dc, visible)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTitle(dc *gg.Context, title string, start time.Time) {
	end := start.AddDate(0, 0, daysInWeek-1)

	dc.SetFontFace(fontFace(26, true))
	dc.SetColor(colorText)
	dc.DrawStringAnchored(title, marginX, titleHeight/2, 0, 0.5)

	dc.SetFontFace(fontFace(18, false))
	dc.SetColor(colorMuted)
	period := fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	dc.DrawStringAnchored(period, imageWidth-marginX, titleHeight/2, 1, 0.5)
}

// drawColumns фон столбцов и подписи дней; выходные и сегодня выделены
func drawColumns(dc *gg.Context, g grid, start time.Time, today int) {
	for day := 0; day < daysInWeek; day++ {
		date := start.AddDate(0, 0, day)
		x := g.x(day)

		switch {
		case day == today:
			dc.SetColor(colorToday)
		case day >= 5:
			dc.SetColor(colorWeekend)
		default:
			dc.SetColor(colorBackground)
		}
		dc.DrawRectangle(x, g.top-dayRowHeight, g.colWidth, g.bottom()-g.top+dayRowHeight)
		dc.Fill()

		dc.SetFontFace(fontFace(18, day == today))
		dc.SetColor(colorText)
		dc.DrawStringAnchored(date.Format("Mon 2"), x+g.colWidth/2, g.top-dayRowHeight/2, 0.5, 0.5)
	}
}

// drawHourGrid линии часов через всю неделю, подписи слева и границы дней
func drawHourGrid(dc *gg.Context, g grid) {
	dc.SetLineWidth(1)
	dc.SetFontFace(fontFace(14, false))

	for h := g.hours.start; h <= g.hours.end; h++ {
		y := g.y(model.NewClock(h, 0))
		dc.SetColor(colorGrid)
		dc.DrawLine(g.left, y, g.right(), y)
		dc.Stroke()

		dc.SetColor(colorMuted)
		dc.DrawStringAnchored(model.NewClock(h, 0).String(), g.left-8, y, 1, 0.5)
	}

	dc.SetColor(colorGrid)
	for day := 0; day <= daysInWeek; day++ {
		dc.DrawLine(g.x(day), g.top, g.x(day), g.bottom())
		dc.Stroke()
	}
}

func drawSlot(dc *gg.Context, g grid, day int, slot *model.AvailabilitySlot) {
	style, ok := slotPalette[slot.Status]
	if !ok {
		style = slotPalette[model.SlotStatusAvailable]
	}

	x := g.x(day) + cellInset
	y := g.y(slot.StartTime) + cellInset
	w := g.colWidth - 2*cellInset
	h := max(g.y(slot.EndTime)-g.y(slot.StartTime)-2*cellInset, 4)

	dc.SetColor(style.fill)
	dc.DrawRoundedRectangle(x, y, w, h, 5)
	dc.Fill()

	dc.SetFontFace(fontFace(15, slot.Status == model.SlotStatusBooked))
	dc.SetColor(style.text)
	dc.DrawStringAnchored(formatting.FormatTimeRange(slot.StartTime, slot.EndTime), x+8, y+h/2, 0, 0.5)
}

// drawNow отметка текущего времени в столбце сегодняшнего дня
func drawNow(dc *gg.Context, g grid, day int, now model.Clock) {
	if now.Hour() < g.hours.start || now.Hour() >= g.hours.end {
		return
	}
	y := g.y(now)

	dc.SetColor(colorNow)
	dc.SetLineWidth(2)
	dc.DrawLine(g.x(day), y, g.x(day+1), y)
	dc.Stroke()
	dc.DrawCircle(g.x(day), y, 4)
	dc.Fill()
}

// drawLegend статусы с количеством слотов за неделю
func drawLegend(dc *gg.Context, slots []*model.AvailabilitySlot) {
	counts := make(map[model.SlotStatus]int)
	for _, slot := range slots {
		counts[slot.Status]++
	}

	dc.SetFontFace(fontFace(15, false))
	x := marginX + hourColWidth
	y := imageHeight - footerHeight/2
	for _, status := range legendOrder {
		style := slotPalette[status]
		dc.SetColor(style.fill)
		dc.DrawRoundedRectangle(x, y-8, 16, 16, 3)
		dc.Fill()

		label := fmt.Sprintf("%s (%d)", style.label, counts[status])
		dc.SetColor(colorText)
		dc.DrawStringAnchored(label, x+24, y, 0, 0.5)

		w, _ := dc.MeasureString(label)
		x += 24 + w + 32
	}
}
