package wire

import "encoding/json"

// Outbound type discriminators (spec.md §4.1, exhaustive).
const (
	TypeIncorrectName = "incorrect-name"
	TypeTooLongName   = "too-long-name"
	TypeUsedName      = "used-name"
	TypeGamesList     = "games-list"
	TypeGameStart     = "game-start"
	TypeWordsList     = "words-list"
	TypeScores        = "scores"
	TypeManager       = "manager"
)

// envelope carries the `type` discriminator every outbound JSON object
// must have, alongside whatever payload fields that type defines.
type envelope struct {
	Type string `json:"type"`
}

// marshal wraps payload with its `type` discriminator and serializes it
// to a single JSON object: the payload is encoded, decoded into a map,
// given a "type" key, and encoded again, so the discriminator sits
// alongside the payload's own fields rather than nested under a
// "payload" key.
func marshal(typ string, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(payloadBytes, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["type"] = typ

	return json.Marshal(fields)
}

// GameDescriptorView is one entry of a games-list payload (spec.md §4.4).
type GameDescriptorView struct {
	ID         uint64   `json:"id"`
	Creator    string   `json:"creator"`
	Mode       string   `json:"mode"`
	Style      string   `json:"style"`
	Rounds     int      `json:"rounds"`
	WordsCount int      `json:"wordsCount"`
	Language   string   `json:"language"`
	Difficulty string   `json:"difficulty"`
	Players    []string `json:"players"`
}

func GamesList(games []GameDescriptorView) ([]byte, error) {
	if games == nil {
		games = []GameDescriptorView{}
	}
	return marshal(TypeGamesList, struct {
		Games []GameDescriptorView `json:"games"`
	}{Games: games})
}

func GameStart(gameID uint64, manager string, rounds int) ([]byte, error) {
	return marshal(TypeGameStart, struct {
		GameID  uint64 `json:"gameId"`
		Manager string `json:"manager"`
		Rounds  int    `json:"rounds"`
	}{GameID: gameID, Manager: manager, Rounds: rounds})
}

// WordView is one word in a words-list payload. ClaimedBy is always
// present; it is the empty string for unclaimed words.
type WordView struct {
	Label     string `json:"label"`
	Display   string `json:"display"`
	ClaimedBy string `json:"claimedBy"`
}

func WordsList(words []WordView) ([]byte, error) {
	return marshal(TypeWordsList, struct {
		Words []WordView `json:"words"`
	}{Words: words})
}

// ScoreView is one player's score line in a roundScores/gameScores array.
type ScoreView struct {
	UserName              string `json:"userName"`
	Points                int    `json:"points"`
	Speed                 float64 `json:"speed"`
	BestSpeed             float64 `json:"bestSpeed"`
	Victories             int    `json:"victories"`
	LatestVictoryTimestamp int64  `json:"latestVictoryTimestamp"`
}

func Scores(roundScores, gameScores []ScoreView, manager string, roundDuration int64, gameOver bool, words []WordView) ([]byte, error) {
	return marshal(TypeScores, struct {
		RoundScores   []ScoreView `json:"roundScores"`
		GameScores    []ScoreView `json:"gameScores"`
		Manager       string      `json:"manager"`
		RoundDuration int64       `json:"roundDuration"`
		GameOver      bool        `json:"gameOver"`
		Words         []WordView  `json:"words"`
	}{
		RoundScores:   roundScores,
		GameScores:    gameScores,
		Manager:       manager,
		RoundDuration: roundDuration,
		GameOver:      gameOver,
		Words:         words,
	})
}

func Manager(manager string) ([]byte, error) {
	return marshal(TypeManager, struct {
		Manager string `json:"manager"`
	}{Manager: manager})
}

func IncorrectName() ([]byte, error) { return marshal(TypeIncorrectName, struct{}{}) }
func TooLongName() ([]byte, error)   { return marshal(TypeTooLongName, struct{}{}) }
func UsedName() ([]byte, error)      { return marshal(TypeUsedName, struct{}{}) }
