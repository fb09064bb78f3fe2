package models

// Asset is a file held by the media host. MediaID is the host's object key
// and is what deletion needs.
type Asset struct {
	URL     string `bson:"url" json:"url"`
	MediaID string `bson:"mediaId" json:"mediaId"`
}

func (a Asset) IsZero() bool {
	return a.URL == "" && a.MediaID == ""
}
