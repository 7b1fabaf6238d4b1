package service

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"gesrh/backend/internal/model"
)

// ── ICS 日历 ────────────────────────────────────────────────
//
// 职责：不可用时间与 iCalendar (RFC 5545) 之间的转换。
//
// 设计决策：
//   - 导入的每个事件（含 RRULE 展开后的每次重复）生成一条 other 类型记录，描述为事件标题
//   - RRULE 交给 rrule-go 展开，无法解析的规则按单次事件处理
//   - 展开受 icsMaxOccurrences 与 icsHorizon 双重限制
//   - 全天事件缺少 DTEND 时持续一天
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize    = 5 * 1024 * 1024 // 5MB
	icsMaxOccurrences = 366
	icsHorizon        = 2 * 365 * 24 * time.Hour
	icsProductID      = "-//gesrh//indisponibilites//FR"
)

// indispoLabels 导出时的事件标题
var indispoLabels = map[string]string{
	model.IndispoLeave:         "Congé",
	model.IndispoWeeklyMeeting: "Réunion hebdomadaire",
	model.IndispoOther:         "Indisponibilité",
}

// parsedEvent ICS 解析中间结构
type parsedEvent struct {
	summary string
	start   time.Time
	end     time.Time
}

// ParseICS 解析 ICS 内容为待导入的不可用时间
// 返回值：slots（去重后的记录）, skipped（无法解析或时间非法的事件数）, error
func ParseICS(reader io.Reader, employeeID string, loc *time.Location) ([]model.Indisponibilite, int, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, 0, fmt.Errorf("ICS 格式解析失败: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	skipped := 0
	seen := make(map[string]bool)
	var slots []model.Indisponibilite

	for _, comp := range cal.Events() {
		events, ok := expandVEvent(comp, loc)
		if !ok {
			skipped++
			continue
		}
		for _, e := range events {
			key := e.summary + "|" + e.start.Format(time.RFC3339) + "|" + e.end.Format(time.RFC3339)
			if seen[key] {
				continue
			}
			seen[key] = true
			slots = append(slots, model.Indisponibilite{
				EmployeeID:  employeeID,
				Type:        model.IndispoOther,
				DateDebut:   e.start,
				DateFin:     e.end,
				Description: e.summary,
			})
		}
	}
	return slots, skipped, nil
}

// expandVEvent 解析单个 VEVENT 并按 RRULE 展开
func expandVEvent(evt *ics.VEvent, loc *time.Location) ([]parsedEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return nil, false
	}
	name := strings.TrimSpace(summary.Value)

	start, allDay, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return nil, false
	}
	end, _, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		switch {
		case evt.GetProperty(ics.ComponentPropertyDuration) != nil:
			d, derr := parseICSDuration(evt.GetProperty(ics.ComponentPropertyDuration).Value)
			if derr != nil {
				return nil, false
			}
			end = start.Add(d)
		case allDay:
			end = start.AddDate(0, 0, 1)
		default:
			return nil, false
		}
	}
	if !start.Before(end) {
		return nil, false
	}

	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		return []parsedEvent{{summary: name, start: start, end: end}}, true
	}

	rule, err := newRecurrence(rruleProp.Value, start, loc)
	if err != nil {
		return []parsedEvent{{summary: name, start: start, end: end}}, true
	}

	exDates := parseExDates(evt, loc)
	duration := end.Sub(start)

	var out []parsedEvent
	for _, cur := range rule.All() {
		if exDates[cur.Format("20060102")] {
			continue
		}
		out = append(out, parsedEvent{summary: name, start: cur, end: cur.Add(duration)})
	}
	return out, len(out) > 0
}

// newRecurrence 构建以 start 为起点的重复规则，COUNT 与 UNTIL 收紧到导入上限
func newRecurrence(value string, start time.Time, loc *time.Location) (*rrule.RRule, error) {
	opt, err := rrule.StrToROptionInLocation(value, loc)
	if err != nil {
		return nil, err
	}
	opt.Dtstart = start
	if !opt.Until.IsZero() && untilIsDate(value) {
		// 仅日期的 UNTIL 包含当天
		opt.Until = opt.Until.Add(24*time.Hour - time.Second)
	}
	if limit := start.Add(icsHorizon); opt.Until.IsZero() || opt.Until.After(limit) {
		opt.Until = limit
	}
	if opt.Count <= 0 || opt.Count > icsMaxOccurrences {
		opt.Count = icsMaxOccurrences
	}
	return rrule.NewRRule(*opt)
}

func untilIsDate(value string) bool {
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "UNTIL") {
			return len(strings.TrimSpace(kv[1])) == len("20060102")
		}
	}
	return false
}

// parseExDates 事件中所有 EXDATE（可能逗号分隔）
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			if t, _, err := parseICSValue(strings.TrimSpace(v), "", loc); err == nil {
				exDates[t.Format("20060102")] = true
			}
		}
	}
	return exDates
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性，第二个返回值表示全天日期
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}
	return parseICSValue(prop.Value, tzid, loc)
}

func parseICSValue(val, tzid string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), false, nil
	}

	target := loc
	if tzid != "" {
		if tzLoc, err := time.LoadLocation(tzid); err == nil {
			target = tzLoc
		}
	}
	if t, err := time.ParseInLocation("20060102T150405", val, target); err == nil {
		return t.In(loc), false, nil
	}
	if t, err := time.ParseInLocation("20060102", val, loc); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("无法解析日期: %s", val)
}

var icsDurationRe = regexp.MustCompile(`^P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseICSDuration 解析 RFC 5545 DURATION（如 PT1H30M、P1D）
func parseICSDuration(val string) (time.Duration, error) {
	m := icsDurationRe.FindStringSubmatch(strings.TrimPrefix(strings.TrimSpace(val), "+"))
	if m == nil {
		return 0, fmt.Errorf("无法解析时长: %s", val)
	}
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, u := range units {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		d += time.Duration(n) * u
	}
	if d <= 0 {
		return 0, fmt.Errorf("无法解析时长: %s", val)
	}
	return d, nil
}

// BuildICS 将不可用时间序列化为 iCalendar
func BuildICS(slots []model.Indisponibilite) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, slot := range slots {
		evt := cal.AddEvent(slot.ID + "@gesrh")
		stamp := slot.UpdatedAt
		if stamp.IsZero() {
			stamp = time.Now()
		}
		evt.SetDtStampTime(stamp)
		evt.SetStartAt(slot.DateDebut)
		evt.SetEndAt(slot.DateFin)

		summary := indispoLabels[slot.Type]
		if summary == "" {
			summary = indispoLabels[model.IndispoOther]
		}
		if slot.Description != "" {
			summary += " : " + slot.Description
			evt.SetDescription(slot.Description)
		}
		evt.SetSummary(summary)
		evt.SetProperty(ics.ComponentPropertyCategories, slot.Type)
	}
	return cal.Serialize()
}
