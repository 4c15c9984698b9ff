package simulation

import "math/rand"

// DayRecord is one simulated day.
type DayRecord struct {
	Day        int `json:"day"`
	BeginOfDay int `json:"begin_of_day"`
	EndOfDay   int `json:"end_of_day"`
	Missed     int `json:"missed"`
	Demand     int `json:"demand"`
	Restock    int `json:"restock"`
}

// Result is the output of a run. FinalInventory is the beginning-of-day
// inventory of the day after the horizon.
type Result struct {
	Records        []DayRecord `json:"records"`
	FinalInventory int         `json:"final_inventory"`
}

// Simulate runs the day-by-day inventory recurrence for cfg.
//
// Draw order on the seeded generator is fixed: every day's demand first,
// then every night's restock outcome. The generator is owned by the call,
// so concurrent calls share no state.
func Simulate(cfg SimulationConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	demands := make([]int, 0, cfg.HorizonDays)
	for d := 0; d < cfg.HorizonDays; d++ {
		demands = append(demands, cfg.Demand.sample(rng))
	}

	restocks := make([]int, 0, cfg.HorizonDays)
	for d := 0; d < cfg.HorizonDays; d++ {
		amount := 0
		if rng.Float64() < cfg.RestockProbability {
			amount = cfg.RestockAmount
		}
		restocks = append(restocks, amount)
	}

	records := make([]DayRecord, 0, cfg.HorizonDays)
	begin := cfg.InitialInventory
	for i, demand := range demands {
		var end, missed int
		if demand > begin {
			missed = demand - begin
		} else {
			end = begin - demand
		}

		records = append(records, DayRecord{
			Day:        i + 1,
			BeginOfDay: begin,
			EndOfDay:   end,
			Missed:     missed,
			Demand:     demand,
			Restock:    restocks[i],
		})

		begin = end + restocks[i]
	}

	return &Result{Records: records, FinalInventory: begin}, nil
}
