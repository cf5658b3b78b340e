package vo

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// ErrInvalidPayload is returned when a JSON document is well-formed but does
// not have the expected shape.
var ErrInvalidPayload = errors.New("invalid payload")

// ParseBlogEntries validates and decodes blogs.json. The top level must be an
// array of objects each carrying a non-empty string date.
func ParseBlogEntries(data []byte) ([]BlogEntry, error) {
	_, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode blog data: %w", err)
	}
	if dataType != jsonparser.Array {
		return nil, fmt.Errorf("%w: blog data is a %s, not an array", ErrInvalidPayload, dataType)
	}

	entries := []BlogEntry{}
	var entryErr error
	_, err = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if entryErr != nil {
			return
		}
		if err != nil {
			entryErr = err
			return
		}
		if dataType != jsonparser.Object {
			entryErr = fmt.Errorf("%w: blog entry at offset %d is a %s", ErrInvalidPayload, offset, dataType)
			return
		}
		var entry BlogEntry
		if entry.Date, err = requiredString(value, "date"); err != nil {
			entryErr = err
			return
		}
		if entry.Title, err = optionalString(value, "title"); err != nil {
			entryErr = err
			return
		}
		if entry.Content, err = optionalString(value, "content"); err != nil {
			entryErr = err
			return
		}
		entries = append(entries, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode blog data: %w", err)
	}
	if entryErr != nil {
		return nil, entryErr
	}
	return entries, nil
}

// ParseImageManifest validates and decodes images.json. A missing category
// is treated as empty.
func ParseImageManifest(data []byte) (ImageManifest, error) {
	var manifest ImageManifest
	_, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return manifest, fmt.Errorf("failed to decode image manifest: %w", err)
	}
	if dataType != jsonparser.Object {
		return manifest, fmt.Errorf("%w: image manifest is a %s, not an object", ErrInvalidPayload, dataType)
	}
	if manifest.Athletics, err = parseImages(data, CategoryAthletics); err != nil {
		return manifest, err
	}
	if manifest.Events, err = parseImages(data, CategoryEvents); err != nil {
		return manifest, err
	}
	return manifest, nil
}

func parseImages(data []byte, category Category) ([]ImageDescriptor, error) {
	raw, dataType, _, err := jsonparser.Get(data, string(category))
	if dataType == jsonparser.NotExist || dataType == jsonparser.Null {
		return []ImageDescriptor{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s images: %w", category, err)
	}
	if dataType != jsonparser.Array {
		return nil, fmt.Errorf("%w: %s is a %s, not an array", ErrInvalidPayload, category, dataType)
	}

	images := []ImageDescriptor{}
	var itemErr error
	_, err = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if itemErr != nil {
			return
		}
		if err != nil {
			itemErr = err
			return
		}
		if dataType != jsonparser.Object {
			itemErr = fmt.Errorf("%w: %s image at offset %d is a %s", ErrInvalidPayload, category, offset, dataType)
			return
		}
		var image ImageDescriptor
		if image.Src, err = requiredString(value, "src"); err != nil {
			itemErr = err
			return
		}
		if image.Alt, err = optionalString(value, "alt"); err != nil {
			itemErr = err
			return
		}
		images = append(images, image)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s images: %w", category, err)
	}
	if itemErr != nil {
		return nil, itemErr
	}
	return images, nil
}

func requiredString(object []byte, key string) (string, error) {
	value, err := optionalString(object, key)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", fmt.Errorf("%w: missing %q", ErrInvalidPayload, key)
	}
	return value, nil
}

func optionalString(object []byte, key string) (string, error) {
	raw, dataType, _, err := jsonparser.Get(object, key)
	switch {
	case dataType == jsonparser.NotExist:
		return "", nil
	case err != nil:
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	case dataType != jsonparser.String:
		return "", fmt.Errorf("%w: %q is a %s, not a string", ErrInvalidPayload, key, dataType)
	}
	value, err := jsonparser.ParseString(raw)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, nil
}
