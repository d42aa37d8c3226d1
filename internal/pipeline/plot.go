package pipeline

import "github.com/ppiankov/lifespan/internal/model"

// PlotSeries projects records onto a timeline. Living subjects end at
// currentYear; the records themselves are left untouched. Records without
// a birth year cannot be placed and are skipped.
func PlotSeries(records []model.PersonRecord, currentYear int) []model.PlotPoint {
	points := make([]model.PlotPoint, 0, len(records))
	for _, rec := range records {
		if rec.Born == nil {
			continue
		}
		point := model.PlotPoint{
			Name:  rec.Name,
			Born:  *rec.Born,
			End:   currentYear,
			Alive: rec.IsAlive(),
		}
		if rec.Died != nil {
			point.End = *rec.Died
		}
		points = append(points, point)
	}
	return points
}
