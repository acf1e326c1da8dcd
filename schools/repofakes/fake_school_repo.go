package schoolrepofakes

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-school-gateway/schools"
)

var _ schools.Repo = (*FakeSchoolRepo)(nil)

type FakeSchoolRepo struct {
	schools map[string]*schools.School
	lock    sync.RWMutex
	lookups int
}

func NewFakeSchoolRepo() *FakeSchoolRepo {
	return &FakeSchoolRepo{
		schools: make(map[string]*schools.School),
	}
}

func (sr *FakeSchoolRepo) Upsert(school *schools.School) {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	if school.ID == "" {
		school.ID = uuid.New().String()
	}
	sr.schools[school.ID] = school
}

func (sr *FakeSchoolRepo) GetByID(_ context.Context, schoolID string) (*schools.School, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.lookups++
	school, ok := sr.schools[schoolID]
	if !ok {
		return nil, schools.ErrNotFound
	}
	c := *school
	return &c, nil
}

func (sr *FakeSchoolRepo) GetBySubdomain(_ context.Context, subdomain string) (*schools.School, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.lookups++
	for _, school := range sr.schools {
		if strings.EqualFold(school.Subdomain, subdomain) {
			c := *school
			return &c, nil
		}
	}
	return nil, schools.ErrNotFound
}

// Lookups returns how many reads the repo has served.
func (sr *FakeSchoolRepo) Lookups() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.lookups
}
