package server

import (
	"bytes"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/engine"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/render/sink"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/treefile"
	"github.com/matzehuels/arbor/pkg/viewport"
)

type instanceSummary struct {
	ID        string             `json:"id"`
	Nodes     int                `json:"nodes"`
	Visible   int                `json:"visible"`
	Revision  int                `json:"revision"`
	Transform viewport.Transform `json:"transform"`
	Query     string             `json:"query,omitempty"`
	Matches   []tree.ID          `json:"matches,omitempty"`
}

type commandResponse struct {
	instanceSummary
	Format string `json:"format,omitempty"`
	Data   []byte `json:"data,omitempty"` // base64 in JSON
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids := s.ids()
	out := make([]instanceSummary, 0, len(ids))
	for _, id := range ids {
		inst, err := s.lookup(id)
		if err != nil {
			continue // removed concurrently
		}
		inst.mu.Lock()
		out = append(out, inst.summary())
		inst.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, treefile.MaxDocumentSize+1))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	spec, err := treefile.Read(bytes.NewReader(data), format)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := s.Load(spec, cache.Hash(data))
	if err != nil {
		writeError(w, err)
		return
	}
	inst, err := s.lookup(id)
	if err != nil {
		writeError(w, err)
		return
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	writeJSON(w, http.StatusCreated, inst.summary())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	inst, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	writeJSON(w, http.StatusOK, inst.summary())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.remove(id) {
		writeError(w, errNotFound(id))
		return
	}
	s.logger.Info("instance deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	inst, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var cmd engine.Command
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&cmd); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidCommand, err, "decode command"))
		return
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	res, err := inst.engine.Do(cmd)
	inst.engine.Settle()
	if err != nil {
		writeError(w, err)
		return
	}
	if cmd.Name != engine.CmdExportVector && cmd.Name != engine.CmdExportRaster {
		inst.revision++
	}
	writeJSON(w, http.StatusOK, commandResponse{
		instanceSummary: inst.summary(),
		Format:          res.Format,
		Data:            res.Data,
	})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	inst, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	inst.mu.Lock()
	scene := inst.engine.Frame()
	inst.mu.Unlock()

	data, err := sink.RenderJSON(scene, sink.WithView())
	if err != nil {
		writeError(w, err)
		return
	}
	writeBytes(w, "application/json", data)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	inst, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	inst.mu.Lock()
	data, err := sink.RenderLayoutJSON(inst.engine.Layout())
	inst.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeBytes(w, "application/json", data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	inst, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = engine.FormatSVG
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	ctx := r.Context()
	key := inst.exportKey(format)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		writeBytes(w, contentTypes[format], data)
		return
	}

	data, err := inst.engine.Export(ctx, format)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.ExportTTL); err != nil {
		s.logger.Warn("cache export", "id", inst.id, "format", format, "error", err)
	}
	writeBytes(w, contentTypes[format], data)
}

var contentTypes = map[string]string{
	engine.FormatSVG:  "image/svg+xml",
	engine.FormatPNG:  "image/png",
	engine.FormatJSON: "application/json",
	engine.FormatPDF:  "application/pdf",
	engine.FormatDOT:  "text/vnd.graphviz",
}

// requestFormat reads the document format from ?format= or Content-Type,
// defaulting to JSON.
func requestFormat(r *http.Request) (treefile.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return treefile.ParseFormat(f)
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return treefile.FormatJSON, nil
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return treefile.FormatYAML, nil
	case "application/toml":
		return treefile.FormatTOML, nil
	}
	return treefile.FormatJSON, nil
}
