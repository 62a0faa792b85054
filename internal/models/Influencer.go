package models

import "strings"

const DefaultComment = "No comment yet"

// InfluencerRecord is one row of the authoritative roster. Credibility holds
// the raw cell value lowercased at load time; anything other than "false" is
// treated as vetted when partitioning.
type InfluencerRecord struct {
	ID          string `json:"id"`
	Credibility string `json:"credibility"`
	Comment     string `json:"comment"`
}

func (r InfluencerRecord) Rejected() bool {
	return strings.EqualFold(strings.TrimSpace(r.Credibility), "false")
}

func (r InfluencerRecord) Approved() bool {
	return strings.EqualFold(strings.TrimSpace(r.Credibility), "true")
}

// HistoricalMetric is one publication event from the master sheet. Cells stay
// strings, the way the store hands them over; absent columns become "".
type HistoricalMetric struct {
	ID              string `json:"id"`
	PublicationDate string `json:"publication_date"`
	PostPrice       string `json:"post_price"`
	Follower        string `json:"follower"`
	AvgView         string `json:"avg_view"`
	CPV             string `json:"cpv"`
	Category        string `json:"category"`
}
