package workflow

import (
	"errors"
	"sync"
)

// RowState 待审批列表中单行的状态
type RowState string

const (
	RowPending  RowState = "pending"
	RowInFlight RowState = "in_flight"
	RowSettled  RowState = "settled"
	RowError    RowState = "error"
)

var (
	ErrRowUnknown     = errors.New("inscription absente de la liste")
	ErrRowBusy        = errors.New("une décision est déjà en cours pour cette inscription")
	ErrRowNotInFlight = errors.New("aucune décision en cours pour cette inscription")
)

// Row 待审批行
type Row struct {
	ID     string   `json:"id"`
	State  RowState `json:"state"`
	Status Status   `json:"status,omitempty"` // 服务端确认后的状态
	Error  string   `json:"error,omitempty"`
}

// Worklist 待审批列表：pending → in_flight → settled | error
// error 行回到待审批视图并附带错误信息，可以重新提交
type Worklist struct {
	mu    sync.Mutex
	order []string
	rows  map[string]*Row
}

// NewWorklist 以待审批报名 ID 初始化
func NewWorklist(ids ...string) *Worklist {
	w := &Worklist{rows: make(map[string]*Row, len(ids))}
	for _, id := range ids {
		w.Add(id)
	}
	return w
}

// Add 加入一行（已存在时忽略）
func (w *Worklist) Add(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.rows[id]; ok {
		return
	}
	w.order = append(w.order, id)
	w.rows[id] = &Row{ID: id, State: RowPending}
}

// Begin 提交审批：行从待审批视图中隐藏
func (w *Worklist) Begin(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	row, ok := w.rows[id]
	if !ok {
		return ErrRowUnknown
	}
	switch row.State {
	case RowPending, RowError:
		row.State = RowInFlight
		row.Error = ""
		return nil
	default:
		return ErrRowBusy
	}
}

// Settle 服务端确认：以服务端返回的状态为准
func (w *Worklist) Settle(id string, status Status) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	row, ok := w.rows[id]
	if !ok {
		return ErrRowUnknown
	}
	if row.State != RowInFlight {
		return ErrRowNotInFlight
	}
	row.State = RowSettled
	row.Status = status
	return nil
}

// Fail 提交失败：行重新出现在待审批视图中并附带错误
func (w *Worklist) Fail(id string, cause error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	row, ok := w.rows[id]
	if !ok {
		return ErrRowUnknown
	}
	if row.State != RowInFlight {
		return ErrRowNotInFlight
	}
	row.State = RowError
	if cause != nil {
		row.Error = cause.Error()
	}
	return nil
}

// Pending 待审批视图：pending 与 error 行，保持加入顺序
func (w *Worklist) Pending() []Row {
	return w.filter(func(r *Row) bool {
		return r.State == RowPending || r.State == RowError
	})
}

// Rows 全部行（按加入顺序）
func (w *Worklist) Rows() []Row {
	return w.filter(func(*Row) bool { return true })
}

// Get 查询单行
func (w *Worklist) Get(id string) (Row, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	row, ok := w.rows[id]
	if !ok {
		return Row{}, false
	}
	return *row, true
}

func (w *Worklist) filter(keep func(*Row) bool) []Row {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Row, 0, len(w.order))
	for _, id := range w.order {
		if r := w.rows[id]; keep(r) {
			out = append(out, *r)
		}
	}
	return out
}
