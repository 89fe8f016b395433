package usecases

import (
	stderrors "errors"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/domain/models"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/services/alarm"
	"github.com/iwtcode/tankRtu/pkg/errors"
)

type Usecase struct {
	cfg     *config.AppConfig
	storage interfaces.Storage
	journal interfaces.EventJournal
	loops   []interfaces.ControlLoop
}

func NewUsecase(cfg *config.AppConfig, storage interfaces.Storage, journal interfaces.EventJournal, loops []interfaces.ControlLoop) interfaces.Usecases {
	return &Usecase{
		cfg:     cfg,
		storage: storage,
		journal: journal,
		loops:   loops,
	}
}

func (u *Usecase) GetPoints() []models.PointView {
	points := u.storage.Snapshot()
	out := make([]models.PointView, 0, len(points))
	for _, p := range points {
		out = append(out, toView(p))
	}
	return out
}

func (u *Usecase) GetPoint(id entities.PointIdentifier) (*models.PointView, error) {
	points, err := u.storage.GetPoints([]entities.PointIdentifier{id})
	if err != nil {
		if stderrors.Is(err, errors.ErrPointNotFound) {
			return nil, errors.NewAppError(errors.NotFoundErrorCode, errors.NotFound, err, true)
		}
		return nil, errors.NewAppError(errors.InternalServerErrorCode, errors.InternalServerError, err, false)
	}
	view := toView(points[0])
	return &view, nil
}

// GetAlarms возвращает точки, находящиеся в аварийном состоянии.
func (u *Usecase) GetAlarms() []models.PointView {
	out := []models.PointView{}
	for _, view := range u.GetPoints() {
		if view.Alarm != entities.NoAlarm {
			out = append(out, view)
		}
	}
	return out
}

func (u *Usecase) GetEvents(limit int) ([]entities.PointEvent, error) {
	events, err := u.journal.Recent(limit)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalServerErrorCode, errors.InternalServerError, err, false)
	}
	return events, nil
}

func (u *Usecase) GetStatus() models.StatusView {
	loops := make([]entities.LoopStatus, 0, len(u.loops))
	for _, l := range u.loops {
		loops = append(loops, l.Status())
	}
	stale := 0
	for _, p := range u.storage.Snapshot() {
		if p.State().Stale {
			stale++
		}
	}
	return models.StatusView{
		RtuAddress:    u.cfg.Rtu.Address,
		PlantMode:     u.cfg.Acquisition.PlantMode,
		Loops:         loops,
		StalePoints:   stale,
		DroppedEvents: u.journal.Dropped(),
	}
}

func toView(p entities.Point) models.PointView {
	state := p.State()
	view := models.PointView{
		ID:        state.ID.String(),
		Name:      state.Item.Name,
		Type:      state.ID.Type,
		Address:   state.ID.Address,
		Raw:       state.RawValue,
		Alarm:     alarm.ForPoint(p),
		Stale:     state.Stale,
		Failures:  state.ConsecutiveFailures,
		Timestamp: state.Timestamp,
	}
	switch v := p.(type) {
	case entities.AnalogPoint:
		view.EGU = v.EGU()
	case entities.DigitalPoint:
		view.EGU = float64(v.Value())
	}
	return view
}
