package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"phone-dashboard-go/internal/timenorm"
	"phone-dashboard-go/internal/types"
)

// QueueSet is the rows of one queue file. Name is the queue taken from
// the file name and is used for rows without a CallQueueName.
type QueueSet struct {
	Name string
	Rows []Row
}

// rawRow is the export schema. Headers are matched case-insensitively and
// any column not listed here is dropped.
type rawRow struct {
	CallGUID      string `mapstructure:"CallGUID"`
	CallDateTime  any    `mapstructure:"CallDateTime"`
	Direction     string `mapstructure:"Direction"`
	OfficeName    string `mapstructure:"OfficeName"`
	UserName      string `mapstructure:"UserName"`
	OriginNumber  string `mapstructure:"OriginNumber"`
	CallDuration  string `mapstructure:"CallDuration"`
	TimeToAnswer  string `mapstructure:"TimeToAnswer"`
	BillableTime  string `mapstructure:"BillableTime"`
	CallQueueName string `mapstructure:"CallQueueName"`
}

func decodeRow(row Row) rawRow {
	var out rawRow
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out
	}
	if err := dec.Decode(map[string]any(row)); err != nil {
		// Weak decoding only fails on nested shapes an export never has;
		// keep whatever fields were decoded.
		return out
	}
	return out
}

// BuildQueueLookup maps CallGUID to queue name across every set in order;
// a later set overwrites an earlier one for the same call.
func BuildQueueLookup(sets []QueueSet) types.QueueLookup {
	lookup := types.QueueLookup{}
	for _, set := range sets {
		for _, row := range set.Rows {
			r := decodeRow(row)
			id := strings.TrimSpace(r.CallGUID)
			if id == "" {
				continue
			}
			name := strings.TrimSpace(r.CallQueueName)
			if name == "" {
				name = set.Name
			}
			lookup[id] = name
		}
	}
	return lookup
}

// Merge turns main export rows into call records, attaching the queue each
// call passed through. Row order is kept and no row is dropped.
func Merge(mainRows []Row, queues []QueueSet, loc *time.Location) []types.CallRecord {
	lookup := BuildQueueLookup(queues)
	out := make([]types.CallRecord, 0, len(mainRows))
	for _, row := range mainRows {
		r := decodeRow(row)
		start, _ := timenorm.Normalize(r.CallDateTime, loc)
		id := strings.TrimSpace(r.CallGUID)
		out = append(out, types.CallRecord{
			CallID:       id,
			Start:        start,
			Direction:    types.ParseDirection(r.Direction),
			Duration:     parseNumber(r.CallDuration),
			TimeToAnswer: parseNumber(r.TimeToAnswer),
			BillableTime: parseNumber(r.BillableTime),
			OfficeName:   strings.TrimSpace(r.OfficeName),
			UserName:     strings.TrimSpace(r.UserName),
			OriginNumber: strings.TrimSpace(r.OriginNumber),
			QueueName:    lookup[id],
		})
	}
	return out
}

// parseNumber reads a seconds field; anything unparsable is 0.
func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
