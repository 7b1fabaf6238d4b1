package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gesrh/backend/internal/model"
	"gesrh/backend/internal/repository"
	pkgerrors "gesrh/backend/pkg/errors"
)

// ── Mock SkillRepository ──

type mockSkillRepo struct {
	skills    map[string]*model.Skill
	jobUsage  map[string]int
	empUsage  map[string]int
	usageErr  error
	usageHits int
}

func newMockSkillRepo() *mockSkillRepo {
	return &mockSkillRepo{
		skills:   make(map[string]*model.Skill),
		jobUsage: make(map[string]int),
		empUsage: make(map[string]int),
	}
}

func (m *mockSkillRepo) add(id, code, label, categorie string) *model.Skill {
	s := &model.Skill{ID: id, CodeCompetence: code, Competence: label, Categorie: categorie}
	s.Version = 1
	m.skills[id] = s
	return s
}

func (m *mockSkillRepo) Create(_ context.Context, skill *model.Skill) error {
	for _, s := range m.skills {
		if s.CodeCompetence == skill.CodeCompetence {
			return pkgerrors.ErrConflict
		}
	}
	if skill.ID == "" {
		skill.ID = "skill-" + skill.CodeCompetence
	}
	skill.Version = 1
	cp := *skill
	m.skills[skill.ID] = &cp
	return nil
}

func (m *mockSkillRepo) GetByID(_ context.Context, id string) (*model.Skill, error) {
	if s, ok := m.skills[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSkillRepo) GetByCode(_ context.Context, code string) (*model.Skill, error) {
	for _, s := range m.skills {
		if s.CodeCompetence == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSkillRepo) List(_ context.Context, search string) ([]model.Skill, error) {
	var result []model.Skill
	for _, s := range m.sorted() {
		if search == "" || strings.Contains(strings.ToLower(s.Competence), strings.ToLower(search)) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSkillRepo) ListByIDs(_ context.Context, ids []string) ([]model.Skill, error) {
	var result []model.Skill
	for _, id := range ids {
		if s, ok := m.skills[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSkillRepo) Update(_ context.Context, skill *model.Skill) error {
	stored, ok := m.skills[skill.ID]
	if !ok || stored.Version != skill.Version {
		return pkgerrors.ErrOptimisticLock
	}
	skill.Version++
	cp := *skill
	m.skills[skill.ID] = &cp
	return nil
}

func (m *mockSkillRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.skills[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.skills, id)
	return nil
}

func (m *mockSkillRepo) CountJobUsages(_ context.Context, id string) (int64, error) {
	return int64(m.jobUsage[id]), nil
}

func (m *mockSkillRepo) Usage(_ context.Context, search string) ([]model.SkillUsage, error) {
	m.usageHits++
	if m.usageErr != nil {
		return nil, m.usageErr
	}
	var rows []model.SkillUsage
	for _, s := range m.sorted() {
		if search != "" && !strings.Contains(strings.ToLower(s.Competence), strings.ToLower(search)) {
			continue
		}
		rows = append(rows, model.SkillUsage{
			Skill:         *s,
			JobCount:      m.jobUsage[s.ID],
			EmployeeCount: m.empUsage[s.ID],
		})
	}
	return rows, nil
}

func (m *mockSkillRepo) Upsert(ctx context.Context, skill *model.Skill) (bool, error) {
	if existing, err := m.GetByCode(ctx, skill.CodeCompetence); err == nil {
		skill.ID = existing.ID
		skill.Version = existing.Version + 1
		cp := *skill
		m.skills[skill.ID] = &cp
		return false, nil
	}
	return true, m.Create(ctx, skill)
}

func (m *mockSkillRepo) sorted() []*model.Skill {
	out := make([]*model.Skill, 0, len(m.skills))
	for _, s := range m.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Competence < out[j].Competence })
	return out
}

// ── Mock JobRepository ──

type mockJobRepo struct {
	jobs   map[string]*model.Job
	skills *mockSkillRepo
}

func newMockJobRepo(skills *mockSkillRepo) *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*model.Job), skills: skills}
}

func (m *mockJobRepo) Create(_ context.Context, job *model.Job) error {
	for _, j := range m.jobs {
		if j.CodeEmploi == job.CodeEmploi {
			return pkgerrors.ErrConflict
		}
	}
	if job.ID == "" {
		job.ID = "job-" + job.CodeEmploi
	}
	job.Version = 1
	cp := *job
	cp.Skills = nil
	m.jobs[job.ID] = &cp
	return nil
}

func (m *mockJobRepo) GetByID(_ context.Context, id string) (*model.Job, error) {
	if j, ok := m.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRepo) GetByCode(_ context.Context, code string) (*model.Job, error) {
	for _, j := range m.jobs {
		if j.CodeEmploi == code {
			cp := *j
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRepo) List(_ context.Context, search string) ([]model.Job, error) {
	var result []model.Job
	for _, j := range m.jobs {
		if search == "" || strings.Contains(strings.ToLower(j.NomEmploi), strings.ToLower(search)) {
			result = append(result, *j)
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].CodeEmploi < result[k].CodeEmploi })
	return result, nil
}

func (m *mockJobRepo) Update(_ context.Context, job *model.Job) error {
	stored, ok := m.jobs[job.ID]
	if !ok || stored.Version != job.Version {
		return pkgerrors.ErrOptimisticLock
	}
	job.Version++
	cp := *job
	cp.Skills = stored.Skills
	m.jobs[job.ID] = &cp
	return nil
}

func (m *mockJobRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.jobs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.jobs, id)
	return nil
}

func (m *mockJobRepo) ReplaceSkills(_ context.Context, jobID string, skills []model.JobSkill) error {
	j, ok := m.jobs[jobID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	j.Skills = make([]model.JobSkill, len(skills))
	for i, s := range skills {
		s.JobID = jobID
		s.Position = i
		if sk, ok := m.skills.skills[s.CompetenceID]; ok {
			s.Skill = sk
		}
		j.Skills[i] = s
	}
	return nil
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	emps   map[string]*model.Employee
	skills *mockSkillRepo
}

func newMockEmployeeRepo(skills *mockSkillRepo) *mockEmployeeRepo {
	return &mockEmployeeRepo{emps: make(map[string]*model.Employee), skills: skills}
}

func (m *mockEmployeeRepo) add(id, email, role string) *model.Employee {
	e := &model.Employee{ID: id, Matricule: "M-" + id, Nom: "Nom " + id, Prenom: "Prénom", Email: email, Role: role}
	e.Version = 1
	m.emps[id] = e
	return e
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	for _, e := range m.emps {
		if strings.EqualFold(e.Email, emp.Email) || e.Matricule == emp.Matricule {
			return pkgerrors.ErrConflict
		}
	}
	if emp.ID == "" {
		emp.ID = "emp-" + emp.Matricule
	}
	emp.Version = 1
	cp := *emp
	m.emps[emp.ID] = &cp
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.emps[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, e := range m.emps {
		if strings.EqualFold(e.Email, strings.TrimSpace(email)) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) List(_ context.Context, search string) ([]model.Employee, error) {
	var result []model.Employee
	for _, e := range m.emps {
		if search == "" || strings.Contains(strings.ToLower(e.Nom+" "+e.Prenom+" "+e.Email), strings.ToLower(search)) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].ID < result[k].ID })
	return result, nil
}

func (m *mockEmployeeRepo) ListByIDs(_ context.Context, ids []string) ([]model.Employee, error) {
	var result []model.Employee
	for _, id := range ids {
		if e, ok := m.emps[id]; ok {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	stored, ok := m.emps[emp.ID]
	if !ok || stored.Version != emp.Version {
		return pkgerrors.ErrOptimisticLock
	}
	for id, e := range m.emps {
		if id != emp.ID && strings.EqualFold(e.Email, emp.Email) {
			return pkgerrors.ErrConflict
		}
	}
	emp.Version++
	cp := *emp
	cp.Competencies = stored.Competencies
	cp.PasswordHash = stored.PasswordHash
	m.emps[emp.ID] = &cp
	return nil
}

func (m *mockEmployeeRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.emps[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.emps, id)
	return nil
}

func (m *mockEmployeeRepo) SetPassword(_ context.Context, id string, hash string) error {
	e, ok := m.emps[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.PasswordHash = &hash
	return nil
}

func (m *mockEmployeeRepo) ReplaceCompetencies(_ context.Context, employeeID string, comps []model.EmployeeCompetency) error {
	e, ok := m.emps[employeeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Competencies = make([]model.EmployeeCompetency, len(comps))
	for i, c := range comps {
		c.EmployeeID = employeeID
		c.Position = i
		if sk, ok := m.skills.skills[c.CompetenceID]; ok {
			c.Skill = sk
		}
		e.Competencies[i] = c
	}
	return nil
}

func (m *mockEmployeeRepo) SetCompetencyLevel(_ context.Context, employeeID, skillID string, level int) error {
	e, ok := m.emps[employeeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range e.Competencies {
		if e.Competencies[i].CompetenceID == skillID {
			e.Competencies[i].NiveauAcquis = level
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock IndisponibiliteRepository ──

type mockIndispoRepo struct {
	slots map[string]*model.Indisponibilite
	seq   int
}

func newMockIndispoRepo() *mockIndispoRepo {
	return &mockIndispoRepo{slots: make(map[string]*model.Indisponibilite)}
}

func (m *mockIndispoRepo) Create(_ context.Context, slot *model.Indisponibilite) error {
	m.seq++
	if slot.ID == "" {
		slot.ID = fmt.Sprintf("indispo-%d", m.seq)
	}
	cp := *slot
	m.slots[slot.ID] = &cp
	return nil
}

func (m *mockIndispoRepo) BatchCreate(ctx context.Context, slots []model.Indisponibilite) error {
	for i := range slots {
		if err := m.Create(ctx, &slots[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockIndispoRepo) GetByID(_ context.Context, id string) (*model.Indisponibilite, error) {
	if s, ok := m.slots[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIndispoRepo) List(_ context.Context, filter repository.IndisponibiliteFilter) ([]model.Indisponibilite, error) {
	var result []model.Indisponibilite
	for _, s := range m.slots {
		if filter.EmployeeID != "" && s.EmployeeID != filter.EmployeeID {
			continue
		}
		if !filter.IncludeArchived && s.Archived {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, k int) bool { return result[i].DateDebut.Before(result[k].DateDebut) })
	return result, nil
}

func (m *mockIndispoRepo) Update(_ context.Context, slot *model.Indisponibilite) error {
	if _, ok := m.slots[slot.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *slot
	m.slots[slot.ID] = &cp
	return nil
}

func (m *mockIndispoRepo) Archive(_ context.Context, id string, _ string) error {
	s, ok := m.slots[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Archived = true
	return nil
}

func (m *mockIndispoRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.slots[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.slots, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	modules     map[string]*model.Module
	evaluations map[string]*model.Evaluation
	assignments map[string]map[string]*bool // module_id → employee_id → present
	employees   *mockEmployeeRepo
}

func newMockCourseRepo(employees *mockEmployeeRepo) *mockCourseRepo {
	return &mockCourseRepo{
		modules:     make(map[string]*model.Module),
		evaluations: make(map[string]*model.Evaluation),
		assignments: make(map[string]map[string]*bool),
		employees:   employees,
	}
}

func (m *mockCourseRepo) addModule(id, titre string) {
	m.modules[id] = &model.Module{ID: id, Titre: titre}
}

func (m *mockCourseRepo) GetModule(_ context.Context, id string) (*model.Module, error) {
	if mod, ok := m.modules[id]; ok {
		cp := *mod
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListModules(_ context.Context) ([]model.Module, error) {
	var result []model.Module
	for _, mod := range m.modules {
		result = append(result, *mod)
	}
	sort.Slice(result, func(i, k int) bool { return result[i].Titre < result[k].Titre })
	return result, nil
}

func (m *mockCourseRepo) GetEvaluation(_ context.Context, id string) (*model.Evaluation, error) {
	if ev, ok := m.evaluations[id]; ok {
		cp := *ev
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListAssignments(_ context.Context, moduleID string) ([]model.ModuleAssignment, error) {
	var rows []model.ModuleAssignment
	for empID, present := range m.assignments[moduleID] {
		row := model.ModuleAssignment{ModuleID: moduleID, EmployeeID: empID, Present: present}
		if e, ok := m.employees.emps[empID]; ok {
			row.Employee = e
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, k int) bool { return rows[i].EmployeeID < rows[k].EmployeeID })
	return rows, nil
}

func (m *mockCourseRepo) Assign(_ context.Context, moduleID string, employeeIDs []string) error {
	if m.assignments[moduleID] == nil {
		m.assignments[moduleID] = make(map[string]*bool)
	}
	for _, id := range employeeIDs {
		if _, ok := m.assignments[moduleID][id]; !ok {
			m.assignments[moduleID][id] = nil
		}
	}
	return nil
}

func (m *mockCourseRepo) SetPresence(_ context.Context, moduleID string, presence map[string]bool) error {
	for empID, present := range presence {
		p := present
		m.assignments[moduleID][empID] = &p
	}
	return nil
}

// ── Mock CycleProgramRepository ──

type mockCycleProgramRepo struct {
	cps map[string]*model.CycleProgram
}

func newMockCycleProgramRepo() *mockCycleProgramRepo {
	return &mockCycleProgramRepo{cps: make(map[string]*model.CycleProgram)}
}

func (m *mockCycleProgramRepo) add(id, typ string, moduleIDs ...string) {
	cp := &model.CycleProgram{ID: id, Titre: "Parcours " + id, Type: typ}
	for _, mid := range moduleIDs {
		cp.Modules = append(cp.Modules, model.Module{ID: mid, Titre: "Module " + mid})
	}
	m.cps[id] = cp
}

func (m *mockCycleProgramRepo) List(_ context.Context) ([]model.CycleProgram, error) {
	var result []model.CycleProgram
	for _, cp := range m.cps {
		result = append(result, *cp)
	}
	sort.Slice(result, func(i, k int) bool { return result[i].ID < result[k].ID })
	return result, nil
}

func (m *mockCycleProgramRepo) GetByID(_ context.Context, id string) (*model.CycleProgram, error) {
	if cp, ok := m.cps[id]; ok {
		c := *cp
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock RegistrationRepository ──

type mockRegistrationRepo struct {
	regs      map[string]*model.Registration
	order     []string
	targets   *mockCycleProgramRepo
	employees *mockEmployeeRepo
	failOn    map[string]error // registration_id → 写入时返回的错误
}

func newMockRegistrationRepo(targets *mockCycleProgramRepo, employees *mockEmployeeRepo) *mockRegistrationRepo {
	return &mockRegistrationRepo{
		regs:      make(map[string]*model.Registration),
		targets:   targets,
		employees: employees,
		failOn:    make(map[string]error),
	}
}

func (m *mockRegistrationRepo) Create(_ context.Context, reg *model.Registration) error {
	for _, r := range m.regs {
		if r.EmployeeID == reg.EmployeeID && r.CycleProgramID == reg.CycleProgramID {
			return pkgerrors.ErrConflict
		}
	}
	if reg.ID == "" {
		reg.ID = fmt.Sprintf("reg-%d", len(m.regs)+1)
	}
	reg.CreatedAt = time.Now()
	cp := *reg
	cp.Modules = append([]model.RegistrationModule(nil), reg.Modules...)
	m.regs[reg.ID] = &cp
	m.order = append(m.order, reg.ID)
	return nil
}

func (m *mockRegistrationRepo) hydrate(r *model.Registration) *model.Registration {
	cp := *r
	cp.Modules = append([]model.RegistrationModule(nil), r.Modules...)
	if t, ok := m.targets.cps[r.CycleProgramID]; ok {
		cp.CycleProgram = t
	}
	if e, ok := m.employees.emps[r.EmployeeID]; ok {
		cp.Employee = e
	}
	return &cp
}

func (m *mockRegistrationRepo) GetByID(_ context.Context, id string) (*model.Registration, error) {
	if r, ok := m.regs[id]; ok {
		return m.hydrate(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRegistrationRepo) ListByTarget(_ context.Context, cycleProgramID, employeeID string) ([]model.Registration, error) {
	var result []model.Registration
	for _, id := range m.order {
		r := m.regs[id]
		if r.CycleProgramID != cycleProgramID {
			continue
		}
		if employeeID != "" && r.EmployeeID != employeeID {
			continue
		}
		result = append(result, *m.hydrate(r))
	}
	return result, nil
}

func (m *mockRegistrationRepo) ListPending(_ context.Context) ([]model.Registration, error) {
	var result []model.Registration
	for _, id := range m.order {
		r := m.regs[id]
		pending := r.Status == "pending"
		for _, mod := range r.Modules {
			if mod.Status == "pending" {
				pending = true
			}
		}
		if pending {
			result = append(result, *m.hydrate(r))
		}
	}
	return result, nil
}

func (m *mockRegistrationRepo) UpdateStatus(_ context.Context, id, status, decidedBy string) error {
	if err := m.failOn[id]; err != nil {
		return err
	}
	r, ok := m.regs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	r.Status = status
	r.DecidedBy = &decidedBy
	r.DecidedAt = &now
	return nil
}

func (m *mockRegistrationRepo) UpdateModuleStatus(_ context.Context, id, moduleID, status, decidedBy string) error {
	if err := m.failOn[id]; err != nil {
		return err
	}
	r, ok := m.regs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range r.Modules {
		if r.Modules[i].ModuleID == moduleID {
			r.Modules[i].Status = status
			r.DecidedBy = &decidedBy
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock 基础设施 ──

type mockBlacklist struct {
	tokens map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.tokens[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.tokens[jti]
	return ok, nil
}

type mockBroadcaster struct {
	messages [][]byte
}

func (m *mockBroadcaster) Broadcast(msg []byte) {
	m.messages = append(m.messages, msg)
}

// ── 测试夹具 ──

type testRepos struct {
	repo         *repository.Repository
	employees    *mockEmployeeRepo
	jobs         *mockJobRepo
	skills       *mockSkillRepo
	indispos     *mockIndispoRepo
	courses      *mockCourseRepo
	targets      *mockCycleProgramRepo
	registration *mockRegistrationRepo
}

func newTestRepos() *testRepos {
	skills := newMockSkillRepo()
	employees := newMockEmployeeRepo(skills)
	targets := newMockCycleProgramRepo()
	r := &testRepos{
		employees:    employees,
		jobs:         newMockJobRepo(skills),
		skills:       skills,
		indispos:     newMockIndispoRepo(),
		courses:      newMockCourseRepo(employees),
		targets:      targets,
		registration: newMockRegistrationRepo(targets, employees),
	}
	r.repo = &repository.Repository{
		Employee:        r.employees,
		Job:             r.jobs,
		Skill:           r.skills,
		Indisponibilite: r.indispos,
		Course:          r.courses,
		CycleProgram:    r.targets,
		Registration:    r.registration,
	}
	return r
}

var testLogger = zap.NewNop()
