package shop

import "github.com/MiguelL1304/aquascape/internal/profile"

// Catalog returns the static shop inventory. Item ids are stored in user inventories and
// must never change.
func Catalog() []Item {
	return []Item{
		{ID: "guppy", Name: "Guppy", Kind: profile.KindFish, Price: 20, AssetPath: "fish/guppy.png"},
		{ID: "neon_tetra", Name: "Neon Tetra", Kind: profile.KindFish, Price: 35, AssetPath: "fish/neon_tetra.png"},
		{ID: "angelfish", Name: "Angelfish", Kind: profile.KindFish, Price: 60, AssetPath: "fish/angelfish.png"},
		{ID: "betta", Name: "Betta", Kind: profile.KindFish, Price: 90, AssetPath: "fish/betta.png"},
		{ID: "discus", Name: "Discus", Kind: profile.KindFish, Price: 150, AssetPath: "fish/discus.png"},
		{ID: "koi", Name: "Koi", Kind: profile.KindFish, Price: 250, AssetPath: "fish/koi.png"},
		{ID: "pebbles", Name: "River Pebbles", Kind: profile.KindDecoration, Price: 15, AssetPath: "decorations/pebbles.png"},
		{ID: "seaweed", Name: "Seaweed", Kind: profile.KindDecoration, Price: 25, AssetPath: "decorations/seaweed.png"},
		{ID: "coral", Name: "Coral Reef", Kind: profile.KindDecoration, Price: 80, AssetPath: "decorations/coral.png"},
		{ID: "treasure_chest", Name: "Treasure Chest", Kind: profile.KindDecoration, Price: 120, AssetPath: "decorations/treasure_chest.png"},
		{ID: "castle", Name: "Sunken Castle", Kind: profile.KindDecoration, Price: 200, AssetPath: "decorations/castle.png"},
	}
}
