package systems

import (
	"fmt"
	"image"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/containers"
	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
)

// TextureSystem manages 2D textures.
type TextureSystem struct {
	backend backend.Backend
	pool    *containers.Pool[metadata.Texture]
}

func NewTextureSystem(maxTextures int, b backend.Backend) (*TextureSystem, error) {
	pool, err := containers.NewPool[metadata.Texture](maxTextures)
	if err != nil {
		return nil, err
	}
	t := &TextureSystem{
		backend: b,
		pool:    pool,
	}
	t.pool.SetOnRemove(func(tex *metadata.Texture) {
		t.backend.TextureDestroy(tex)
	})
	return t, nil
}

func validTextureConfig(c metadata.TextureConfig) error {
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("texture dimensions must be non-zero, got %dx%d", c.Width, c.Height)
	}
	if c.Format <= metadata.PixelFormatDefault || c.Format > metadata.PixelFormatDepth24Stencil8 {
		return fmt.Errorf("invalid pixel format %d", c.Format)
	}
	if c.WrapS <= metadata.TextureWrapDefault || c.WrapS > metadata.TextureWrapMirroredRepeat {
		return fmt.Errorf("invalid wrap mode %d", c.WrapS)
	}
	if c.WrapT <= metadata.TextureWrapDefault || c.WrapT > metadata.TextureWrapMirroredRepeat {
		return fmt.Errorf("invalid wrap mode %d", c.WrapT)
	}
	if c.MinFilter <= metadata.TextureMinFilterDefault || c.MinFilter > metadata.TextureMinFilterLinearMipmapLinear {
		return fmt.Errorf("invalid min filter %d", c.MinFilter)
	}
	if c.MagFilter <= metadata.TextureMagFilterDefault || c.MagFilter > metadata.TextureMagFilterLinear {
		return fmt.Errorf("invalid mag filter %d", c.MagFilter)
	}
	if len(c.Data) > 0 && c.Format.IsDepth() {
		return fmt.Errorf("depth textures cannot be created with initial data")
	}
	return nil
}

// Create allocates a texture, optionally uploading initial pixel data.
func (t *TextureSystem) Create(config metadata.TextureConfig) (metadata.Handle, error) {
	config = config.WithDefaults()
	if config.Name == "" {
		config.Name = uuid.New().String()
	}
	if err := validTextureConfig(config); err != nil {
		err = fmt.Errorf("texture '%s': %w", config.Name, err)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	texture := metadata.Texture{
		Name:       config.Name,
		Width:      config.Width,
		Height:     config.Height,
		Format:     config.Format,
		WrapS:      config.WrapS,
		WrapT:      config.WrapT,
		MinFilter:  config.MinFilter,
		MagFilter:  config.MagFilter,
		HasMipmaps: config.GenerateMipmaps,
	}
	if err := t.backend.TextureCreate(&texture, config.Data, config.DataFormat); err != nil {
		err = fmt.Errorf("failed to create texture '%s': %w", config.Name, err)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	h, err := t.pool.Insert(texture)
	if err != nil {
		t.backend.TextureDestroy(&texture)
		return metadata.NilHandle, err
	}
	core.LogDebug("created texture '%s' (%dx%d)", config.Name, config.Width, config.Height)
	return h, nil
}

// Get returns the texture for a handle, or false for a nil or stale handle.
func (t *TextureSystem) Get(h metadata.Handle) (*metadata.Texture, bool) {
	return t.pool.Get(h)
}

// SetData replaces the full pixel contents of a texture. A zero dataFormat
// defaults to the texture's own format.
func (t *TextureSystem) SetData(h metadata.Handle, data []byte, dataFormat metadata.PixelFormat) error {
	texture, ok := t.pool.Get(h)
	if !ok {
		err := fmt.Errorf("invalid texture handle %d: %w", h, core.ErrInvalidHandle)
		core.LogError(err.Error())
		return err
	}
	if len(data) == 0 {
		err := fmt.Errorf("texture '%s': no pixel data to write", texture.Name)
		core.LogError(err.Error())
		return err
	}
	if dataFormat == metadata.PixelFormatDefault {
		dataFormat = texture.Format
	}
	if err := t.backend.TextureWriteData(texture, data, dataFormat); err != nil {
		err = fmt.Errorf("failed to write texture '%s': %w", texture.Name, err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

// Destroy releases the texture. Returns false for a nil or stale handle.
func (t *TextureSystem) Destroy(h metadata.Handle) bool {
	return t.pool.Remove(h)
}

// Shutdown destroys every live texture.
func (t *TextureSystem) Shutdown() {
	for _, h := range t.pool.Handles() {
		t.pool.Remove(h)
	}
}

// PixelsFromImage converts a decoded image into tightly packed RGBA8 bytes
// suitable for TextureConfig.Data, plus its dimensions.
func PixelsFromImage(img image.Image) ([]byte, uint32, uint32) {
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, xdraw.Src)
	return nrgba.Pix, uint32(bounds.Dx()), uint32(bounds.Dy())
}
