package diff

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
)

type DiffSuite struct {
	suite.Suite
	stored models.Event
}

func TestDiffSuite(t *testing.T) {
	suite.Run(t, new(DiffSuite))
}

func (s *DiffSuite) SetupTest() {
	threshold := 250.0
	s.stored = models.Event{
		Name:                 "Q3 Offsite",
		MaxBudget:            1000,
		AutoApprove:          false,
		AutoApproveThreshold: &threshold,
	}
}

func num(v float64) *models.FlexNumber {
	return &models.FlexNumber{Value: v}
}

func boolPtr(v bool) *bool { return &v }

func (s *DiffSuite) TestIdenticalValuesProduceNoChanges() {
	d := Compute(s.stored, models.EventUpdate{
		MaxBudget:            num(1000),
		AutoApprove:          boolPtr(false),
		AutoApproveThreshold: num(250),
	}, Loose)

	s.False(d.HasChanges())
	s.Empty(d.Changes)
}

func (s *DiffSuite) TestAbsentFieldsAreNeverChanges() {
	d := Compute(s.stored, models.EventUpdate{}, Loose)
	s.False(d.HasChanges())
}

func (s *DiffSuite) TestSingleBudgetChange() {
	d := Compute(s.stored, models.EventUpdate{MaxBudget: num(1500)}, Loose)

	s.Require().Len(d.Changes, 1)
	s.Equal(models.FieldMaxBudget, d.Changes[0].Field)
	s.Equal(float64(1000), d.Changes[0].Original)
	s.Equal(float64(1500), d.Changes[0].Updated)
}

func (s *DiffSuite) TestNonGovernedFieldsAreIgnored() {
	name := "Renamed"
	d := Compute(s.stored, models.EventUpdate{Name: &name}, Loose)
	s.False(d.HasChanges())
}

func (s *DiffSuite) TestAllThreeChangeInCanonicalOrder() {
	d := Compute(s.stored, models.EventUpdate{
		MaxBudget:            num(2000),
		AutoApprove:          boolPtr(true),
		AutoApproveThreshold: num(400),
	}, Loose)

	s.Require().Len(d.Changes, 3)
	s.Equal(models.FieldMaxBudget, d.Changes[0].Field)
	s.Equal(models.FieldAutoApprove, d.Changes[1].Field)
	s.Equal(models.FieldAutoApproveThreshold, d.Changes[2].Field)
}

func (s *DiffSuite) TestNilStoredThresholdNeverEqualsProvidedValue() {
	s.stored.AutoApproveThreshold = nil

	d := Compute(s.stored, models.EventUpdate{AutoApproveThreshold: num(0)}, Loose)

	s.Require().Len(d.Changes, 1)
	c := d.Changes[0]
	s.Nil(c.Original)
	s.Equal(float64(0), c.Updated)
}

func (s *DiffSuite) TestLooseCoercesStringTypedNumbers() {
	var upd models.EventUpdate
	s.Require().NoError(json.Unmarshal([]byte(`{"maxBudget":"1000"}`), &upd))

	s.False(Compute(s.stored, upd, Loose).HasChanges())
}

func (s *DiffSuite) TestStrictTreatsStringTypedNumberAsChange() {
	var upd models.EventUpdate
	s.Require().NoError(json.Unmarshal([]byte(`{"maxBudget":"1000"}`), &upd))

	d := Compute(s.stored, upd, Strict)

	s.Require().Len(d.Changes, 1)
	s.Equal(models.FieldMaxBudget, d.Changes[0].Field)
	s.Equal(float64(1000), d.Changes[0].Updated)
}

func (s *DiffSuite) TestComputeIsIdempotent() {
	upd := models.EventUpdate{MaxBudget: num(1500), AutoApprove: boolPtr(true)}

	first := Compute(s.stored, upd, Loose)
	second := Compute(s.stored, upd, Loose)

	s.Equal(first, second)
}

func (s *DiffSuite) TestApplyThenRecomputeYieldsNoChanges() {
	upd := models.EventUpdate{MaxBudget: num(1500), AutoApproveThreshold: num(300)}

	merged := upd.Apply(s.stored)
	s.False(Compute(merged, upd, Loose).HasChanges())
}
