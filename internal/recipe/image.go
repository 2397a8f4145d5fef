package recipe

// ImageKind tags an ImageSource.
type ImageKind int

const (
	ImagePath ImageKind = iota
	ImageBase64
)

// ImageSource identifies one OCR input.
type ImageSource struct {
	Kind  ImageKind
	Value string
}

func PathImage(path string) ImageSource {
	return ImageSource{Kind: ImagePath, Value: path}
}

func Base64Image(data string) ImageSource {
	return ImageSource{Kind: ImageBase64, Value: data}
}

// Label names the image in source metadata. Inline data is never echoed.
func (s ImageSource) Label() string {
	if s.Kind == ImageBase64 {
		return "base64-image"
	}
	return s.Value
}
