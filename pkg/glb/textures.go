package glb

import (
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/manifest"
	"github.com/Faultbox/glbforge/pkg/texture"
)

// DefaultSampler returns linear filtering with trilinear minification and
// repeat wrapping.
func DefaultSampler() manifest.Sampler {
	return manifest.Sampler{
		MagFilter: manifest.FilterLinear,
		MinFilter: manifest.FilterLinearMipmapLinear,
		WrapS:     manifest.WrapRepeat,
		WrapT:     manifest.WrapRepeat,
	}
}

// AddImage embeds encoded image data. mime must be image/png or image/jpeg.
// A mismatch between mime and the sniffed content is logged, not rejected.
func (b *Builder) AddImage(data []byte, mime string) (int, error) {
	index := len(b.images)
	if mime != texture.MIMEPNG && mime != texture.MIMEJPEG {
		return 0, entityErr("image", index, "mimeType", "%q: %w", mime, ErrInvalidData)
	}
	if len(data) == 0 {
		return 0, entityErr("image", index, "", "no data: %w", ErrInvalidData)
	}
	if sniffed, err := texture.DetectMIME(data); err != nil || sniffed != mime {
		b.log.Warn("image content does not match declared MIME type",
			zap.Int("image", index), zap.String("declared", mime), zap.String("sniffed", sniffed), zap.Error(err))
	}

	view := b.reg.RegisterImage(data)
	b.images = append(b.images, manifest.Image{BufferView: &view, MimeType: mime})
	b.log.Debug("added image", zap.Int("image", index), zap.String("mimeType", mime), zap.Int("bytes", len(data)))
	return index, nil
}

// AddImageAuto embeds encoded image data whose MIME type is sniffed from
// its content.
func (b *Builder) AddImageAuto(data []byte) (int, error) {
	mime, err := texture.DetectMIME(data)
	if err != nil {
		return 0, entityErr("image", len(b.images), "mimeType", "%v: %w", err, ErrInvalidData)
	}
	return b.AddImage(data, mime)
}

// EmbedImage encodes img as PNG or JPEG and embeds it. quality applies to
// JPEG only; zero selects texture.DefaultJPEGQuality.
func (b *Builder) EmbedImage(img image.Image, format texture.Format, quality int) (int, error) {
	if format != texture.PNG && format != texture.JPEG {
		return 0, entityErr("image", len(b.images), "mimeType", "%s: %w", format, ErrInvalidData)
	}
	data, err := texture.Encode(img, format, quality)
	if err != nil {
		return 0, entityErr("image", len(b.images), "", "%v: %w", err, ErrInvalidData)
	}
	return b.AddImage(data, format.MIME())
}

// AddSampler adds a sampler. Zero fields are left to the viewer's defaults.
func (b *Builder) AddSampler(s manifest.Sampler) (int, error) {
	index := len(b.samplers)
	if s.MagFilter != 0 && !s.MagFilter.IsMagFilter() {
		return 0, entityErr("sampler", index, "magFilter", "%d: %w", s.MagFilter, ErrInvalidData)
	}
	if s.MinFilter != 0 && !s.MinFilter.IsMinFilter() {
		return 0, entityErr("sampler", index, "minFilter", "%d: %w", s.MinFilter, ErrInvalidData)
	}
	if s.WrapS != 0 && !s.WrapS.Valid() {
		return 0, entityErr("sampler", index, "wrapS", "%d: %w", s.WrapS, ErrInvalidData)
	}
	if s.WrapT != 0 && !s.WrapT.Valid() {
		return 0, entityErr("sampler", index, "wrapT", "%d: %w", s.WrapT, ErrInvalidData)
	}
	b.samplers = append(b.samplers, s)
	return index, nil
}

// AddTexture binds image source to an optional sampler.
func (b *Builder) AddTexture(source int, sampler *int) (int, error) {
	index := len(b.textures)
	if source < 0 || source >= len(b.images) {
		return 0, entityErr("texture", index, "source", "%d of %d: %w", source, len(b.images), ErrIndexOutOfRange)
	}
	tex := manifest.Texture{Source: source}
	if sampler != nil {
		if *sampler < 0 || *sampler >= len(b.samplers) {
			return 0, entityErr("texture", index, "sampler", "%d of %d: %w", *sampler, len(b.samplers), ErrIndexOutOfRange)
		}
		s := *sampler
		tex.Sampler = &s
	}
	b.textures = append(b.textures, tex)
	b.log.Debug("added texture", zap.Int("texture", index), zap.Int("image", source))
	return index, nil
}
