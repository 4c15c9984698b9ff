package simulation

// Summary aggregates a result into service-level indicators.
type Summary struct {
	Days           int     `json:"days"`
	TotalDemand    int     `json:"total_demand"`
	UnitsSold      int     `json:"units_sold"`
	TotalMissed    int     `json:"total_missed"`
	FillRate       float64 `json:"fill_rate"`
	StockoutDays   int     `json:"stockout_days"`
	RestockEvents  int     `json:"restock_events"`
	UnitsRestocked int     `json:"units_restocked"`
	AvgBeginOfDay  float64 `json:"avg_begin_of_day"`
	AvgEndOfDay    float64 `json:"avg_end_of_day"`
	FinalInventory int     `json:"final_inventory"`
}

// Summarize computes totals over every record. Fill rate is units sold over
// units demanded, and 1 when nothing was demanded.
func Summarize(r *Result) Summary {
	s := Summary{
		Days:           len(r.Records),
		FinalInventory: r.FinalInventory,
		FillRate:       1,
	}
	if s.Days == 0 {
		return s
	}

	var sumBegin, sumEnd int
	for _, rec := range r.Records {
		s.TotalDemand += rec.Demand
		s.TotalMissed += rec.Missed
		if rec.Missed > 0 {
			s.StockoutDays++
		}
		if rec.Restock > 0 {
			s.RestockEvents++
			s.UnitsRestocked += rec.Restock
		}
		sumBegin += rec.BeginOfDay
		sumEnd += rec.EndOfDay
	}

	s.UnitsSold = s.TotalDemand - s.TotalMissed
	if s.TotalDemand > 0 {
		s.FillRate = float64(s.UnitsSold) / float64(s.TotalDemand)
	}
	s.AvgBeginOfDay = float64(sumBegin) / float64(s.Days)
	s.AvgEndOfDay = float64(sumEnd) / float64(s.Days)

	return s
}
