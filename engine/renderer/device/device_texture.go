package device

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"go.uber.org/zap"
)

func (d *device) TextureLoaded(id common.AssetID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.textures[id]
	return ok
}

func (d *device) LoadTexture(t texture.Texture) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, err := d.backend.CreateTexture(t)
	if err != nil {
		return fmt.Errorf("load texture %d: %w", t.ID(), err)
	}
	d.textures[t.ID()] = name
	return nil
}

func (d *device) BindTexture(id common.AssetID, unit texture.Unit) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bindTexture(id, unit)
}

func (d *device) bindTexture(id common.AssetID, unit texture.Unit) error {
	name, ok := d.textures[id]
	if !ok {
		return common.LookupError("texture", id)
	}
	d.backend.BindTexture(name, unit)
	return nil
}

func (d *device) ReleaseTexture(id common.AssetID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseTexture(id)
}

func (d *device) releaseTexture(id common.AssetID) {
	name, ok := d.textures[id]
	if !ok {
		return
	}
	d.backend.DeleteTexture(name)
	delete(d.textures, id)
}

func (d *device) TextureName(id common.AssetID) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, ok := d.textures[id]
	if !ok {
		return 0, common.LookupError("texture", id)
	}
	return name, nil
}

func (d *device) FramebufferLoaded(id common.AssetID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.framebuffers[id]
	return ok
}

func (d *device) LoadFramebuffer(fb framebuffer.Framebuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	textures := fb.Textures()
	for _, t := range textures {
		if t.Width() == 0 || t.Height() == 0 {
			t.SetSize(fb.Width(), fb.Height())
		}
	}
	e, err := d.buildFramebuffer(fb, textures)
	if err != nil {
		return err
	}
	d.framebuffers[fb.ID()] = e
	d.logger.Debug("framebuffer loaded",
		zap.Uint64("asset_id", uint64(fb.ID())), zap.Int("width", fb.Width()), zap.Int("height", fb.Height()))
	return nil
}

// buildFramebuffer creates the GPU objects and registers the attachment textures. Existing
// texture registrations with the same IDs are overwritten without being released.
func (d *device) buildFramebuffer(fb framebuffer.Framebuffer, textures []texture.Texture) (*framebufferEntry, error) {
	h, err := d.backend.CreateFramebuffer(fb.Width(), fb.Height(), textures)
	if err != nil {
		return nil, fmt.Errorf("build framebuffer %d: %w", fb.ID(), err)
	}

	sorted := backend.SortAttachments(textures)
	e := &framebufferEntry{handle: h, width: fb.Width(), height: fb.Height()}
	attachments := make([]texture.AttachmentType, 0, len(sorted))
	for i, t := range sorted {
		d.textures[t.ID()] = h.Textures[i]
		e.textures = append(e.textures, t.ID())
		if t.Attachment().IsColor() {
			attachments = append(attachments, t.Attachment())
		}
	}
	fb.SetAttachments(attachments)
	return e, nil
}

func (d *device) BindFramebuffer(id common.AssetID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.framebuffers[id]
	if !ok {
		return common.LookupError("framebuffer", id)
	}
	d.backend.BindFramebuffer(e.handle.FBO, e.width, e.height)
	return nil
}

func (d *device) BindDefault(width, height int) {
	d.backend.BindFramebuffer(0, width, height)
}

func (d *device) ResizeFramebuffer(fb framebuffer.Framebuffer, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	newW, newH := framebuffer.ScaledSize(width, height, fb.ResizeFactor())
	textures := fb.Textures()

	type size struct{ w, h int }
	oldFB := size{fb.Width(), fb.Height()}
	oldTextures := make([]size, len(textures))
	for i, t := range textures {
		oldTextures[i] = size{t.Width(), t.Height()}
	}
	oldAttachments := fb.Attachments()

	fb.SetSize(newW, newH)
	for _, t := range textures {
		t.SetSize(newW, newH)
	}
	fb.ClearAttachments()

	// the old entry is detached from the texture map so a failed build can restore it
	old, hadOld := d.framebuffers[fb.ID()]
	var oldNames map[common.AssetID]uint32
	if hadOld {
		oldNames = make(map[common.AssetID]uint32, len(old.textures))
		for _, id := range old.textures {
			oldNames[id] = d.textures[id]
		}
	}

	e, err := d.buildFramebuffer(fb, textures)
	if err != nil {
		fb.SetSize(oldFB.w, oldFB.h)
		for i, t := range textures {
			t.SetSize(oldTextures[i].w, oldTextures[i].h)
		}
		fb.SetAttachments(oldAttachments)
		for id, name := range oldNames {
			d.textures[id] = name
		}
		return fmt.Errorf("resize framebuffer %d to %dx%d: %w", fb.ID(), newW, newH, err)
	}

	if hadOld {
		for id, name := range oldNames {
			d.backend.DeleteTexture(name)
			if !contains(e.textures, id) {
				delete(d.textures, id)
			}
		}
		d.backend.DeleteFramebuffer(old.handle)
	}
	d.framebuffers[fb.ID()] = e
	d.logger.Debug("framebuffer resized",
		zap.Uint64("asset_id", uint64(fb.ID())), zap.Int("width", newW), zap.Int("height", newH))
	return nil
}

func (d *device) ReleaseFramebuffer(id common.AssetID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseFramebuffer(id)
}

func (d *device) releaseFramebuffer(id common.AssetID) {
	e, ok := d.framebuffers[id]
	if !ok {
		return
	}
	for _, t := range e.textures {
		d.releaseTexture(t)
	}
	d.backend.DeleteFramebuffer(e.handle)
	delete(d.framebuffers, id)
}

func (d *device) FramebufferName(id common.AssetID) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.framebuffers[id]
	if !ok {
		return 0, common.LookupError("framebuffer", id)
	}
	return e.handle.FBO, nil
}

func contains(ids []common.AssetID, id common.AssetID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
