package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func programRegistration() *Registration {
	return &Registration{
		ID:         "r1",
		TargetType: TargetProgram,
		Status:     StatusPending,
		Modules: []ModuleStatus{
			{ModuleID: "m1", Status: StatusPending},
			{ModuleID: "m2", Status: StatusAccepted},
			{ModuleID: "m3", Status: StatusRejected},
		},
	}
}

func TestDecideModule_AcceptLeavesSiblingsUntouched(t *testing.T) {
	r := programRegistration()

	require.NoError(t, r.DecideModule("m1", StatusAccepted))

	s, _ := r.ModuleStatusOf("m1")
	assert.Equal(t, StatusAccepted, s)
	s, _ = r.ModuleStatusOf("m2")
	assert.Equal(t, StatusAccepted, s)
	s, _ = r.ModuleStatusOf("m3")
	assert.Equal(t, StatusRejected, s)
}

func TestDecideModule_RedundantIsRejected(t *testing.T) {
	r := programRegistration()

	err := r.DecideModule("m2", StatusAccepted)
	assert.ErrorIs(t, err, ErrRedundantDecision)

	s, _ := r.ModuleStatusOf("m2")
	assert.Equal(t, StatusAccepted, s)
}

func TestDecideModule_RedecisionAllowed(t *testing.T) {
	r := programRegistration()
	require.NoError(t, r.DecideModule("m3", StatusAccepted))
	require.NoError(t, r.DecideModule("m2", StatusRejected))

	s, _ := r.ModuleStatusOf("m3")
	assert.Equal(t, StatusAccepted, s)
	s, _ = r.ModuleStatusOf("m2")
	assert.Equal(t, StatusRejected, s)
}

func TestDecideModule_Errors(t *testing.T) {
	r := programRegistration()
	assert.ErrorIs(t, r.DecideModule("m9", StatusAccepted), ErrUnknownModule)
	assert.ErrorIs(t, r.DecideModule("m1", StatusPending), ErrInvalidDecision)

	cycle := &Registration{ID: "c", TargetType: TargetCycle, Status: StatusPending}
	assert.ErrorIs(t, cycle.DecideModule("m1", StatusAccepted), ErrCycleIsAtomic)
}

func TestDecide_Overall(t *testing.T) {
	r := &Registration{TargetType: TargetCycle, Status: StatusPending}

	require.NoError(t, r.Decide(StatusRejected))
	assert.Equal(t, StatusRejected, r.Status)

	assert.ErrorIs(t, r.Decide(StatusRejected), ErrRedundantDecision)
	assert.ErrorIs(t, r.Decide(StatusPending), ErrInvalidDecision)
}

func TestDecide_SettledIsTerminal(t *testing.T) {
	r := &Registration{TargetType: TargetCycle, Status: StatusPending}
	require.NoError(t, r.Decide(StatusAccepted))

	assert.ErrorIs(t, r.Decide(StatusRejected), ErrAlreadyDecided)
	assert.Equal(t, StatusAccepted, r.Status)

	rejected := &Registration{TargetType: TargetProgram, Status: StatusRejected}
	assert.ErrorIs(t, rejected.Decide(StatusAccepted), ErrAlreadyDecided)
	assert.Equal(t, StatusRejected, rejected.Status)
}

func TestActions_DisableCurrentStatus(t *testing.T) {
	r := programRegistration()
	a := r.Actions()

	assert.Equal(t, ActionSet{CanAccept: true, CanReject: true}, a.Overall)
	assert.Equal(t, ActionSet{CanAccept: true, CanReject: true}, a.Modules["m1"])
	assert.Equal(t, ActionSet{CanAccept: false, CanReject: true}, a.Modules["m2"])
	assert.Equal(t, ActionSet{CanAccept: true, CanReject: false}, a.Modules["m3"])

	cycle := &Registration{TargetType: TargetCycle, Status: StatusAccepted}
	ca := cycle.Actions()
	assert.Nil(t, ca.Modules)
	assert.Equal(t, ActionSet{}, ca.Overall)
}

func TestActions_SettledKeepsModuleActions(t *testing.T) {
	r := programRegistration()
	r.Status = StatusRejected
	a := r.Actions()

	assert.Equal(t, ActionSet{}, a.Overall, "整体审批结束后不可再改判")
	assert.Equal(t, ActionSet{CanAccept: true, CanReject: true}, a.Modules["m1"])
	assert.Equal(t, ActionSet{CanAccept: false, CanReject: true}, a.Modules["m2"])
}
