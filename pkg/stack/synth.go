package stack

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/talves/gameservers/pkg/infra/cloudformation"
	kio "github.com/talves/gameservers/pkg/io"
	"github.com/talves/gameservers/pkg/logging"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
	"go.uber.org/zap"
)

const (
	MANIFEST_VERSION = "1"
	MANIFEST_FILE    = "manifest.json"
	ASSETS_DIR       = "assets"
)

type (
	// Assembly is the result of synthesizing an app.
	Assembly struct {
		Manifest  Manifest
		Templates map[string]*cloudformation.Template
		// Bodies holds the serialized templates, as written to TemplateFile.
		Bodies map[string][]byte
		Assets []*resources.FileAsset
	}

	Manifest struct {
		Version     string          `json:"version"`
		AssetBucket string          `json:"assetBucket"`
		Stacks      []StackManifest `json:"stacks"`
		Assets      []AssetManifest `json:"assets,omitempty"`
	}

	StackManifest struct {
		Name         string      `json:"name"`
		Description  string      `json:"description,omitempty"`
		TemplateFile string      `json:"templateFile"`
		Environment  Environment `json:"environment"`
		Dependencies []string    `json:"dependencies,omitempty"`
		Parent       string      `json:"parent,omitempty"`
		Resources    int         `json:"resources"`
		// Assets lists the object keys of the assets the stack needs.
		Assets []string `json:"assets,omitempty"`
	}

	AssetManifest struct {
		Hash       string                   `json:"hash"`
		ObjectKey  string                   `json:"objectKey"`
		Packaging  resources.AssetPackaging `json:"packaging"`
		SourcePath string                   `json:"sourcePath,omitempty"`
		// File is where the asset is written in the output directory, for assets without a source path.
		File string `json:"file,omitempty"`
	}
)

// Synth compiles every stack to a template. Nested stack templates become template assets of their parent.
func (a *App) Synth(ctx context.Context) (*Assembly, error) {
	log := logging.GetLogger(ctx).Named("synth")

	stacks, err := a.Stacks()
	if err != nil {
		return nil, err
	}

	asm := &Assembly{
		Manifest: Manifest{
			Version:     MANIFEST_VERSION,
			AssetBucket: a.AssetBucket,
		},
		Templates: make(map[string]*cloudformation.Template),
		Bodies:    make(map[string][]byte),
	}
	compiler := cloudformation.NewCompiler()
	stackAssets := make(map[string][]*resources.FileAsset)

	for _, s := range stacks {
		tmpl, err := compiler.Compile(ctx, s.definition())
		if err != nil {
			return nil, fmt.Errorf("could not compile stack %s: %w", s.Name, err)
		}
		asm.Templates[s.Name] = tmpl
		stackAssets[s.Name] = append(stackAssets[s.Name], s.assets...)

		if s.IsNested() {
			// the parent references the template by its hash, so it cannot change after this point
			body, err := tmpl.Marshal(cloudformation.FormatJSON)
			if err != nil {
				return nil, err
			}
			compiler.Seal(s.Name)
			asset := resources.NewContentAsset(body, ".json", resources.PackagingTemplate, a.AssetBucket)
			s.handle.Template = asset
			asm.Bodies[s.Name] = body
			// a nested stack's assets are uploaded when its top level stack is deployed
			root := s.Root().Name
			stackAssets[root] = append(stackAssets[root], asset)
			stackAssets[root] = append(stackAssets[root], s.assets...)
		}
		log.Debug("synthesized stack", logging.StackField(s.Name), zap.Int("resources", len(tmpl.Resources)))
	}

	for _, s := range stacks {
		if !s.IsNested() {
			body, err := asm.Templates[s.Name].Marshal(a.Format)
			if err != nil {
				return nil, err
			}
			asm.Bodies[s.Name] = body
		}
		asm.Manifest.Stacks = append(asm.Manifest.Stacks, a.stackManifest(s, asm.Templates[s.Name], stackAssets[s.Name]))
	}

	seen := make(map[string]struct{})
	for _, s := range stacks {
		for _, asset := range stackAssets[s.Name] {
			if _, ok := seen[asset.ObjectKey()]; ok {
				continue
			}
			seen[asset.ObjectKey()] = struct{}{}
			asm.Assets = append(asm.Assets, asset)
			am := AssetManifest{
				Hash:       asset.Hash,
				ObjectKey:  asset.ObjectKey(),
				Packaging:  asset.Packaging,
				SourcePath: asset.SourcePath,
			}
			if asset.SourcePath == "" {
				am.File = path.Join(ASSETS_DIR, asset.ObjectKey())
			}
			asm.Manifest.Assets = append(asm.Manifest.Assets, am)
		}
	}
	log.Info("synthesized app", zap.Int("stacks", len(stacks)), zap.Int("assets", len(asm.Assets)))
	return asm, nil
}

func (a *App) templateFile(s *Stack) string {
	if s.IsNested() {
		return s.Name + ".nested.template.json"
	}
	return s.Name + ".template" + a.Format.Extension()
}

func (a *App) stackManifest(s *Stack, tmpl *cloudformation.Template, assets []*resources.FileAsset) StackManifest {
	sm := StackManifest{
		Name:         s.Name,
		Description:  s.Description,
		TemplateFile: a.templateFile(s),
		Environment:  s.Root().Env,
		Dependencies: s.Dependencies(),
		Resources:    len(tmpl.Resources),
	}
	if s.Parent != nil {
		sm.Parent = s.Parent.Name
	}
	for _, asset := range assets {
		sm.Assets = append(sm.Assets, asset.ObjectKey())
	}
	return sm
}

// Stack returns the manifest entry of the named stack.
func (m Manifest) Stack(name string) (StackManifest, bool) {
	for _, s := range m.Stacks {
		if s.Name == name {
			return s, true
		}
	}
	return StackManifest{}, false
}

// Files lists what is written to the output directory: every template, the in-memory assets and the manifest.
func (asm *Assembly) Files() ([]kio.File, error) {
	var files []kio.File
	for _, sm := range asm.Manifest.Stacks {
		files = append(files, &kio.RawFile{FPath: sm.TemplateFile, Content: asm.Bodies[sm.Name]})
	}
	for i, am := range asm.Manifest.Assets {
		if am.File == "" {
			continue
		}
		files = append(files, &kio.RawFile{FPath: am.File, Content: asm.Assets[i].Content})
	}
	manifest, err := json.MarshalIndent(asm.Manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	files = append(files, &kio.RawFile{FPath: MANIFEST_FILE, Content: append(manifest, '\n')})
	return files, nil
}

// WriteTo writes the assembly to the output directory.
func (asm *Assembly) WriteTo(ctx context.Context, dir string) error {
	files, err := asm.Files()
	if err != nil {
		return err
	}
	return kio.OutputTo(ctx, files, dir)
}
