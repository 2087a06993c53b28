package judge

// Club is one of the venues the bouncer guards.
type Club string

const (
	ClubBerghain Club = "Berghain"
	ClubKitKat   Club = "KitKat"
	ClubSisyphus Club = "Sisyphus"
)

// UnknownClub is the sentinel echoed in error verdicts when the club
// could not be determined before the error occurred.
const UnknownClub = "Unknown"

// Clubs lists every venue a submission may target.
var Clubs = []Club{ClubBerghain, ClubKitKat, ClubSisyphus}

// ParseClub maps a submitted club name onto the closed enum.
func ParseClub(s string) (Club, bool) {
	for _, c := range Clubs {
		if s == string(c) {
			return c, true
		}
	}
	return "", false
}

// Outcome is the bouncer's call.
type Outcome string

const (
	OutcomeAccept Outcome = "ACCEPT"
	OutcomeReject Outcome = "REJECT"
	OutcomeError  Outcome = "ERROR"
)

// Verdict is the response envelope for a single submission. It is built
// once, serialized immediately and never persisted.
type Verdict struct {
	Verdict Outcome `json:"verdict"`
	Message string  `json:"message"`
	Club    string  `json:"club"`
	Mock    bool    `json:"_mock,omitempty"`
}

// Image is an uploaded outfit photo. The frontend downscales and
// re-encodes before upload, so the resolver only checks non-emptiness.
type Image struct {
	Data     []byte
	MimeType string
	Filename string
}

// Submission is one judging request as parsed off the wire.
type Submission struct {
	Club        string
	Image       *Image
	MockFailure bool
}
