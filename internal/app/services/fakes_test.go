package services

import (
	"context"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/repositories"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
)

var ctx = context.Background()

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func i64(v int64) *int64 { return &v }

// fakeParticipants is an in-memory ParticipantStore
type fakeParticipants struct {
	mu     sync.Mutex
	rows   map[int64]*models.Participant
	nextID int64
	years  []int
}

func newFakeParticipants(ps ...models.Participant) *fakeParticipants {
	f := &fakeParticipants{rows: map[int64]*models.Participant{}}
	for _, p := range ps {
		p := p
		f.rows[p.ID] = &p
		f.nextID = max(f.nextID, p.ID)
	}
	return f
}

func (f *fakeParticipants) sorted(keep func(p *models.Participant) bool) []models.Participant {
	out := []models.Participant{}
	for _, p := range f.rows {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GivenName != out[j].GivenName {
			return out[i].GivenName < out[j].GivenName
		}
		if out[i].FamilyName != out[j].FamilyName {
			return out[i].FamilyName < out[j].FamilyName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeParticipants) Create(_ context.Context, p *models.Participant) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.rows[p.ID] = &cp
	return p.ID, nil
}

func (f *fakeParticipants) Update(_ context.Context, p *models.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; !ok {
		return apperrors.ErrParticipantNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeParticipants) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return apperrors.ErrParticipantNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeParticipants) GetByID(_ context.Context, id int64) (*models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeParticipants) List(_ context.Context, year int, q dto.ParticipantQuery, _ time.Time, _, pageSize int) (*dto.ParticipantListResponse, error) {
	items := f.sorted(func(p *models.Participant) bool { return p.Year == year })
	return &dto.ParticipantListResponse{Items: items}, nil
}

func (f *fakeParticipants) ListByYear(_ context.Context, year int) ([]models.Participant, error) {
	return f.sorted(func(p *models.Participant) bool { return p.Year == year }), nil
}

func (f *fakeParticipants) ListByCohort(_ context.Context, id int64) ([]models.Participant, error) {
	return f.sorted(func(p *models.Participant) bool { return p.CohortID != nil && *p.CohortID == id }), nil
}

func (f *fakeParticipants) ListByImperio(_ context.Context, id int64) ([]models.Participant, error) {
	return f.sorted(func(p *models.Participant) bool { return p.ImperioID != nil && *p.ImperioID == id }), nil
}

func (f *fakeParticipants) ListWithPhotos(_ context.Context) ([]models.Participant, error) {
	return f.sorted(func(p *models.Participant) bool { return p.Photo != "" }), nil
}

func (f *fakeParticipants) SetPhoto(_ context.Context, id int64, photo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return apperrors.ErrParticipantNotFound
	}
	p.Photo = photo
	return nil
}

func (f *fakeParticipants) BulkAssign(_ context.Context, year int, ids []int64, cohortID, imperioID *int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		p, ok := f.rows[id]
		if !ok || p.Year != year {
			continue
		}
		if cohortID != nil {
			p.CohortID = i64(*cohortID)
		}
		if imperioID != nil {
			p.ImperioID = i64(*imperioID)
		}
		n++
	}
	return n, nil
}

func (f *fakeParticipants) RemoveFromGroup(_ context.Context, column string, groupID int64, ids []int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		p, ok := f.rows[id]
		if !ok {
			continue
		}
		ref := &p.CohortID
		if column == imperioColumn {
			ref = &p.ImperioID
		}
		if *ref != nil && **ref == groupID {
			*ref = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeParticipants) Years(_ context.Context) ([]int, error) {
	return f.years, nil
}

// fakeCohorts is an in-memory CohortStore
type fakeCohorts struct {
	rows map[int64]*models.Cohort
	next int64
}

func newFakeCohorts(cs ...models.Cohort) *fakeCohorts {
	f := &fakeCohorts{rows: map[int64]*models.Cohort{}}
	for _, c := range cs {
		c := c
		f.rows[c.ID] = &c
		f.next = max(f.next, c.ID)
	}
	return f
}

func (f *fakeCohorts) Create(_ context.Context, c *models.Cohort) (int64, error) {
	f.next++
	c.ID = f.next
	cp := *c
	f.rows[c.ID] = &cp
	return c.ID, nil
}

func (f *fakeCohorts) Update(_ context.Context, c *models.Cohort) error {
	if _, ok := f.rows[c.ID]; !ok {
		return apperrors.ErrCohortNotFound
	}
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCohorts) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return apperrors.ErrCohortNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeCohorts) GetByID(_ context.Context, id int64) (*models.Cohort, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrCohortNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCohorts) ListByYear(_ context.Context, year int) ([]models.Cohort, error) {
	out := []models.Cohort{}
	for _, c := range f.rows {
		if c.Year == year {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fakeImperios is an in-memory ImperioStore with the per-year name rule
type fakeImperios struct {
	rows map[int64]*models.Imperio
	next int64
}

func newFakeImperios(is ...models.Imperio) *fakeImperios {
	f := &fakeImperios{rows: map[int64]*models.Imperio{}}
	for _, i := range is {
		i := i
		f.rows[i.ID] = &i
		f.next = max(f.next, i.ID)
	}
	return f
}

func (f *fakeImperios) Create(_ context.Context, i *models.Imperio) (int64, error) {
	for _, other := range f.rows {
		if other.Year == i.Year && other.Name == i.Name {
			return 0, repositories.ErrImperioNameTaken
		}
	}
	f.next++
	i.ID = f.next
	cp := *i
	f.rows[i.ID] = &cp
	return i.ID, nil
}

func (f *fakeImperios) Update(_ context.Context, i *models.Imperio) error {
	if _, ok := f.rows[i.ID]; !ok {
		return apperrors.ErrImperioNotFound
	}
	cp := *i
	f.rows[i.ID] = &cp
	return nil
}

func (f *fakeImperios) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return apperrors.ErrImperioNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeImperios) GetByID(_ context.Context, id int64) (*models.Imperio, error) {
	i, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrImperioNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeImperios) ListByYear(_ context.Context, year int) ([]models.Imperio, error) {
	out := []models.Imperio{}
	for _, i := range f.rows {
		if i.Year == year {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

// fakeDays is an in-memory EventDayStore. Summaries are derived from the
// attendance fake when one is attached.
type fakeDays struct {
	rows       map[int64]*models.EventDay
	next       int64
	attendance *fakeAttendance
}

func newFakeDays(ds ...models.EventDay) *fakeDays {
	f := &fakeDays{rows: map[int64]*models.EventDay{}}
	for _, d := range ds {
		d := d
		f.rows[d.ID] = &d
		f.next = max(f.next, d.ID)
	}
	return f
}

func (f *fakeDays) Create(_ context.Context, d *models.EventDay) (int64, error) {
	for _, other := range f.rows {
		if other.Date.Equal(d.Date) {
			return 0, repositories.ErrEventDateTaken
		}
	}
	f.next++
	d.ID = f.next
	cp := *d
	f.rows[d.ID] = &cp
	return d.ID, nil
}

func (f *fakeDays) GetByID(_ context.Context, id int64) (*models.EventDay, error) {
	d, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrEventDayNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDays) ListByYear(_ context.Context, year int) ([]models.EventDay, error) {
	out := []models.EventDay{}
	for _, d := range f.rows {
		if d.Year == year {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeDays) ListSummaries(c context.Context, year int) ([]models.EventDaySummary, error) {
	days, _ := f.ListByYear(c, year)
	out := []models.EventDaySummary{}
	for i := len(days) - 1; i >= 0; i-- {
		s := models.EventDaySummary{EventDay: days[i]}
		if f.attendance != nil {
			for key, present := range f.attendance.records {
				if key[1] != days[i].ID {
					continue
				}
				s.Total++
				if present {
					s.Present++
				}
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// fakeAttendance keys records by (participant, day)
type fakeAttendance struct {
	records      map[[2]int64]bool
	participants *fakeParticipants
}

func newFakeAttendance(participants *fakeParticipants) *fakeAttendance {
	return &fakeAttendance{records: map[[2]int64]bool{}, participants: participants}
}

func (f *fakeAttendance) ReplaceDay(_ context.Context, dayID int64, presence map[int64]bool) (int64, error) {
	var deleted int64
	for key := range f.records {
		if key[1] == dayID {
			delete(f.records, key)
			deleted++
		}
	}
	for id, present := range presence {
		f.records[[2]int64{id, dayID}] = present
	}
	return deleted, nil
}

func (f *fakeAttendance) Upsert(_ context.Context, participantID, dayID int64, present bool) (bool, error) {
	if _, ok := f.participants.rows[participantID]; !ok {
		return false, apperrors.ErrParticipantNotFound
	}
	key := [2]int64{participantID, dayID}
	_, existed := f.records[key]
	f.records[key] = present
	return !existed, nil
}

func (f *fakeAttendance) PresentIDs(_ context.Context, dayID int64) (map[int64]bool, error) {
	out := map[int64]bool{}
	for key, present := range f.records {
		if key[1] == dayID && present {
			out[key[0]] = true
		}
	}
	return out, nil
}

func (f *fakeAttendance) PresenceTallies(_ context.Context, year int, dayID int64) ([]models.PresenceTally, error) {
	out := []models.PresenceTally{}
	for _, p := range f.participants.sorted(func(p *models.Participant) bool { return p.Year == year && p.CohortID == nil }) {
		if !f.records[[2]int64{p.ID, dayID}] {
			continue
		}
		count := 0
		for key, present := range f.records {
			if key[0] == p.ID && present {
				count++
			}
		}
		out = append(out, models.PresenceTally{Participant: p, PresentCount: count})
	}
	return out, nil
}

func (f *fakeAttendance) ListForDay(_ context.Context, dayID int64) ([]models.RosterEntry, error) {
	out := []models.RosterEntry{}
	for _, p := range f.participants.sorted(func(*models.Participant) bool { return true }) {
		if present, ok := f.records[[2]int64{p.ID, dayID}]; ok {
			out = append(out, models.RosterEntry{Participant: p, Present: present})
		}
	}
	return out, nil
}

// fakeHeadcounts keeps one headcount per kind and day
type fakeHeadcounts struct {
	rows map[models.HeadcountKind]map[int64]*models.Headcount
	days *fakeDays
}

func newFakeHeadcounts(days *fakeDays) *fakeHeadcounts {
	return &fakeHeadcounts{rows: map[models.HeadcountKind]map[int64]*models.Headcount{}, days: days}
}

func (f *fakeHeadcounts) Upsert(_ context.Context, kind models.HeadcountKind, dayID int64, quantity int, recordedBy *int64) (bool, error) {
	day, ok := f.days.rows[dayID]
	if !ok {
		return false, apperrors.ErrEventDayNotFound
	}
	if f.rows[kind] == nil {
		f.rows[kind] = map[int64]*models.Headcount{}
	}
	_, existed := f.rows[kind][dayID]
	f.rows[kind][dayID] = &models.Headcount{
		ID:         dayID,
		Kind:       kind,
		EventDayID: dayID,
		EventDate:  day.Date,
		Quantity:   quantity,
		RecordedBy: recordedBy,
		RecordedAt: time.Now(),
	}
	return !existed, nil
}

func (f *fakeHeadcounts) GetForDay(_ context.Context, kind models.HeadcountKind, dayID int64) (*models.Headcount, error) {
	h, ok := f.rows[kind][dayID]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (f *fakeHeadcounts) ListByYear(_ context.Context, kind models.HeadcountKind, year int) ([]models.Headcount, error) {
	out := []models.Headcount{}
	for dayID, h := range f.rows[kind] {
		if f.days.rows[dayID].Year == year {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.After(out[j].EventDate) })
	return out, nil
}

// fakeFeed records published live events
type fakeFeed struct {
	events []string
}

func (f *fakeFeed) AttendanceUpdated(int64, int64, bool, bool) {
	f.events = append(f.events, "attendance.updated")
}

func (f *fakeFeed) CheckinSubmitted(int64, int, int) {
	f.events = append(f.events, "checkin.submitted")
}

func (f *fakeFeed) HeadcountUpdated(int64, models.HeadcountKind, int) {
	f.events = append(f.events, "headcount.updated")
}

// fakeNotifier captures sent messages
type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

// fakeStorage is a FileStorage over a set of references
type fakeStorage struct {
	files   map[string]bool
	deleted []string
	next    int
}

func newFakeStorage(refs ...string) *fakeStorage {
	f := &fakeStorage{files: map[string]bool{}}
	for _, r := range refs {
		f.files[r] = true
	}
	return f
}

func (f *fakeStorage) SaveFile(_ context.Context, fh *multipart.FileHeader, subPath string) (string, error) {
	f.next++
	ref := subPath + "/" + fh.Filename
	f.files[ref] = true
	return ref, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, ref string) error {
	delete(f.files, ref)
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, ref string) (bool, error) {
	return f.files[ref], nil
}

func (f *fakeStorage) URL(ref string) string { return "/media/" + ref }

// fakeSheet captures a ReplaceTable call
type fakeSheet struct {
	a1     string
	header []string
	rows   [][]string
}

func (f *fakeSheet) SpreadsheetID() string { return "sheet-1" }

func (f *fakeSheet) ReplaceTable(_ context.Context, a1 string, header []string, rows [][]string) error {
	f.a1, f.header, f.rows = a1, header, rows
	return nil
}
