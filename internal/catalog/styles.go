// Package catalog seeds the hairstyle catalog by classifying style names into
// structured attributes with a generative text model.
package catalog

// SeedStyle is a catalog candidate before classification.
type SeedStyle struct {
	Name        string
	Description string
}

// DefaultStyles is the built-in seed list.
var DefaultStyles = []SeedStyle{
	{Name: "Layered CS Curl Perm", Description: "Light, voluminous layers throughout the hair with a mix of C-curls and S-curls for a naturally flowing wave pattern."},
	{Name: "Blunt Cut & Tassel Cut", Description: "A clean, straight cut ending sharply at the jawline, styled straight without waves."},
	{Name: "Hippie Perm & Vintage Perm", Description: "Full volume with tight, all-over curls for a messy, retro texture."},
	{Name: "Hime Cut (Princess Cut)", Description: "Side sections cut straight to frame the face at the jaw or lip line."},
	{Name: "Birkin Bang (Natural Full Bang)", Description: "A lightly layered full fringe cut between the eyebrows and eyelids."},
	{Name: "Medium-Length Wave Perm", Description: "Soft natural waves on medium-length hair."},
	{Name: "세미허쉬컷"},
	{Name: "세미허쉬펌"},
	{Name: "레이어드컷"},
	{Name: "레이어드펌"},
	{Name: "샌드컷"},
	{Name: "샌드펌"},
	{Name: "슬릭컷"},
	{Name: "슬릭펌"},
	{Name: "베베펌"},
	{Name: "베베컷"},
	{Name: "로피펌"},
	{Name: "단발펌"},
	{Name: "태슬컷"},
	{Name: "태슬펌"},
	{Name: "빌드펌"},
	{Name: "히피펌"},
	{Name: "허그펌"},
	{Name: "그레이스펌"},
	{Name: "엘리자벳펌"},
}
