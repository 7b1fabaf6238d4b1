package workflow

import "errors"

var (
	ErrNoModuleSelected   = errors.New("sélectionnez au moins un module")
	ErrModuleNotInProgram = errors.New("le module sélectionné n'appartient pas au programme")
	ErrInvalidTargetType  = errors.New("type de parcours inconnu")
)

// Target 可报名的周期或项目
type Target struct {
	ID        string
	Type      TargetType
	ModuleIDs []string
}

// Enrollment 待写入的报名
// cycle 类报名不携带模块行
type Enrollment struct {
	TargetID  string
	Type      TargetType
	ModuleIDs []string
}

// Enroll 根据用户的模块选择生成报名
//   - program：至少选择一个属于该项目的模块，重复选择去重
//   - cycle：忽略模块选择，整体报名
func Enroll(target Target, selected []string) (Enrollment, error) {
	e := Enrollment{TargetID: target.ID, Type: target.Type}

	switch target.Type {
	case TargetCycle:
		return e, nil
	case TargetProgram:
	default:
		return Enrollment{}, ErrInvalidTargetType
	}

	allowed := make(map[string]struct{}, len(target.ModuleIDs))
	for _, id := range target.ModuleIDs {
		allowed[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		if _, ok := allowed[id]; !ok {
			return Enrollment{}, ErrModuleNotInProgram
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		e.ModuleIDs = append(e.ModuleIDs, id)
	}

	if len(e.ModuleIDs) == 0 {
		return Enrollment{}, ErrNoModuleSelected
	}
	return e, nil
}
