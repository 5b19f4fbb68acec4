package media

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicID derives the Cloudinary public id and resource type of a delivery URL
// such as https://res.cloudinary.com/demo/video/upload/v1712/folder/clip.mp4.
func PublicID(rawURL string) (publicID string, resourceType string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "", "", ErrInvalidURL
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	uploadAt := -1
	for i, s := range segments {
		if s == "upload" {
			uploadAt = i
			break
		}
	}
	if uploadAt < 1 || uploadAt == len(segments)-1 {
		return "", "", ErrInvalidURL
	}

	resourceType = segments[uploadAt-1]
	rest := segments[uploadAt+1:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}

	id := strings.Join(rest, "/")
	id = strings.TrimSuffix(id, path.Ext(id))
	if id == "" {
		return "", "", ErrInvalidURL
	}
	return id, resourceType, nil
}

// ObjectName returns the key of a MinIO object from its public URL
func ObjectName(rawURL, baseURL, bucket string) (string, error) {
	prefix := strings.TrimRight(baseURL, "/") + "/" + bucket + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", ErrInvalidURL
	}
	name := strings.TrimPrefix(rawURL, prefix)
	if name == "" {
		return "", ErrInvalidURL
	}
	return name, nil
}
