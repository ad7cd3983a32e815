package match

// Record is one detected match, in output column order. Unknown fields are
// empty.
type Record struct {
	Player1Name   string  `csv:"player1_name" json:"player1_name"`
	Player2Name   string  `csv:"player2_name" json:"player2_name"`
	Player3Name   string  `csv:"player3_name" json:"player3_name"`
	Player4Name   string  `csv:"player4_name" json:"player4_name"`
	Player1Unit   string  `csv:"player1_unit" json:"player1_unit"`
	Player2Unit   string  `csv:"player2_unit" json:"player2_unit"`
	Player3Unit   string  `csv:"player3_unit" json:"player3_unit"`
	Player4Unit   string  `csv:"player4_unit" json:"player4_unit"`
	Player1Result Outcome `csv:"player1_result" json:"player1_result"`
	Player2Result Outcome `csv:"player2_result" json:"player2_result"`
	Player3Result Outcome `csv:"player3_result" json:"player3_result"`
	Player4Result Outcome `csv:"player4_result" json:"player4_result"`
	StartTime     string  `csv:"start_time" json:"start_time"`
	FrameName     string  `csv:"ocr_frame_name" json:"ocr_frame_name"`
}

// Field returns the value of the named field, or "" for unknown names.
func (r Record) Field(name string) string {
	switch name {
	case FieldPlayer1Name:
		return r.Player1Name
	case FieldPlayer2Name:
		return r.Player2Name
	case FieldPlayer3Name:
		return r.Player3Name
	case FieldPlayer4Name:
		return r.Player4Name
	case FieldPlayer1Unit:
		return r.Player1Unit
	case FieldPlayer2Unit:
		return r.Player2Unit
	case FieldPlayer3Unit:
		return r.Player3Unit
	case FieldPlayer4Unit:
		return r.Player4Unit
	default:
		return ""
	}
}

func (r *Record) setFields(reading Reading) {
	r.Player1Name = reading[FieldPlayer1Name]
	r.Player2Name = reading[FieldPlayer2Name]
	r.Player3Name = reading[FieldPlayer3Name]
	r.Player4Name = reading[FieldPlayer4Name]
	r.Player1Unit = reading[FieldPlayer1Unit]
	r.Player2Unit = reading[FieldPlayer2Unit]
	r.Player3Unit = reading[FieldPlayer3Unit]
	r.Player4Unit = reading[FieldPlayer4Unit]
}

func (r *Record) setOutcomes(o [4]Outcome) {
	r.Player1Result = o[0]
	r.Player2Result = o[1]
	r.Player3Result = o[2]
	r.Player4Result = o[3]
}

// Outcomes returns the four seat outcomes.
func (r Record) Outcomes() [4]Outcome {
	return [4]Outcome{r.Player1Result, r.Player2Result, r.Player3Result, r.Player4Result}
}

// Timestamp is one line of the timestamps-only output.
type Timestamp struct {
	MatchNumber int    `csv:"match_number" json:"match_number"`
	StartTime   string `csv:"start_time" json:"start_time"`
}
