package drive

import (
	"net/url"

	drive "google.golang.org/api/drive/v3"
)

const downloadBaseURL = "https://docs.google.com/uc"

// FileInfo is the part of a Drive file the bot cares about.
type FileInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DownloadURL returns the direct download address of a file. Telegram fetches
// the document from this URL itself.
func DownloadURL(id string) string {
	v := url.Values{}
	v.Set("export", "download")
	v.Set("id", id)
	return downloadBaseURL + "?" + v.Encode()
}

func convertToFileInfo(f *drive.File) FileInfo {
	return FileInfo{ID: f.Id, Name: f.Name}
}
