package catalog

// Full returns the catalog with all six background modes. This is the
// authoritative catalog unless a deployment configures another one.
func Full() *Catalog {
	return &Catalog{
		Name:        NameFull,
		Styles:      styles(),
		Effects:     effects(),
		Backgrounds: backgrounds(),
	}
}

// Classic returns the earlier three-background variant of the studio.
func Classic() *Catalog {
	return &Catalog{
		Name:        NameClassic,
		Styles:      styles(),
		Effects:     effects(),
		Backgrounds: backgrounds()[:3],
	}
}

func styles() []Style {
	return []Style{
		{Key: "3d-glossy", Value: "3D Glossy", Label: "3D Glossy", Description: "Smooth, dimensional", Icon: "💎"},
		{Key: "neon-cyberpunk", Value: "Neon Cyberpunk", Label: "Cyberpunk", Description: "Glowing futuristic", Icon: "🌆"},
		{Key: "metallic-chrome", Value: "Metallic Chrome", Label: "Chrome", Description: "Polished silver", Icon: "🔩"},
		{Key: "graffiti-street", Value: "Graffiti Street", Label: "Graffiti", Description: "Urban street art", Icon: "🎨"},
		{Key: "vintage-retro", Value: "Vintage Retro", Label: "Retro", Description: "80s VHS style", Icon: "📼"},
		{Key: "minimal-logo", Value: "Minimal Logo", Label: "Minimal", Description: "Clean vector", Icon: "✒️"},
		{Key: "fire-ember", Value: "Fire & Ember", Label: "Fire", Description: "Burning flames", Icon: "🔥"},
		{Key: "ice-frost", Value: "Ice & Frost", Label: "Ice", Description: "Frozen crystal", Icon: "❄️"},
		{Key: "nature-floral", Value: "Nature Floral", Label: "Nature", Description: "Vines & leaves", Icon: "🌿"},
		{Key: "candy-bubble", Value: "Candy Bubble", Label: "Candy", Description: "Soft & inflated", Icon: "🍬"},
		{Key: "steampunk", Value: "Steampunk", Label: "Steampunk", Description: "Gears & brass", Icon: "⚙️"},
		{Key: "liquid-metal", Value: "Liquid Metal", Label: "Liquid", Description: "Molten flow", Icon: "💧"},
		{Key: "origami", Value: "Origami Paper", Label: "Origami", Description: "Folded paper", Icon: "🦢"},
		{Key: "gothic", Value: "Gothic Medieval", Label: "Gothic", Description: "Dark medieval", Icon: "🏰"},
		{Key: "cybernetic", Value: "Cybernetic Circuitry", Label: "Circuit", Description: "Tech wires", Icon: "🔌"},
	}
}

func effects() []Effect {
	return []Effect{
		{Key: "glow", Value: "Radiant Glow", Label: "Glow"},
		{Key: "shadow", Value: "Heavy Drop Shadow", Label: "Shadow"},
		{Key: "glitch", Value: "Glitch Distortion", Label: "Glitch"},
		{Key: "particles", Value: "Floating Particles", Label: "Particles"},
		{Key: "metallic", Value: "Metallic Finish", Label: "Metallic"},
		{Key: "outline", Value: "Bold Outline", Label: "Outline"},
		{Key: "reflect", Value: "Floor Reflections", Label: "Reflect"},
		{Key: "smoke", Value: "Smoke Wisps", Label: "Smoke"},
		{Key: "splash", Value: "Liquid Splash", Label: "Splash"},
		{Key: "lightning", Value: "Lightning Bolts", Label: "Lightning"},
		{Key: "hologram", Value: "Holographic Overlay", Label: "Hologram"},
		{Key: "shatter", Value: "Shattered Glass", Label: "Shatter"},
		{Key: "cosmic", Value: "Cosmic Dust", Label: "Cosmic"},
	}
}

func backgrounds() []Background {
	return []Background{
		{Key: "dark", Label: "Dark Studio", Swatch: "#171717", Phrase: "on a solid dark studio background"},
		{Key: "light", Label: "Bright Studio", Swatch: "#f3f4f6", Phrase: "on a clean white studio background"},
		{Key: "abstract", Label: "Abstract", Swatch: "#312e81", Phrase: "on a creative abstract artistic background matching the text style"},
		{Key: "cyber", Label: "Cyber Grid", Swatch: "#164e63", Phrase: "on a neon cyber grid background with glowing lines"},
		{Key: "space", Label: "Deep Space", Swatch: "#000000", Phrase: "on a deep space background with stars and nebula"},
		{Key: "underwater", Label: "Underwater", Swatch: "#1e40af", Phrase: "on an underwater background with light rays and bubbles"},
	}
}
