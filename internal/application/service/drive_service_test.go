package service

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// newClient creates a client through the service so it gets its checklist.
func (e *env) newClient(t *testing.T, name string) *entity.Client {
	t.Helper()
	c, err := e.clientSvc.CreateClient(e.ctx(), &ClientInput{CompanyName: strPtr(name)}, nil)
	require.NoError(t, err)
	return c
}

func (e *env) requirement(t *testing.T, clientID uuid.UUID, name string) *entity.Requirement {
	t.Helper()
	reqs, err := e.reqs.ListByClient(e.ctx(), clientID)
	require.NoError(t, err)
	for i := range reqs {
		if reqs[i].Name == name {
			return &reqs[i]
		}
	}
	t.Fatalf("requirement %q not found", name)
	return nil
}

func upload(clientID uuid.UUID, name, body string) *UploadInput {
	return &UploadInput{
		ClientID:    clientID,
		Filename:    name,
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Content:     strings.NewReader(body),
	}
}

func TestUploadAndAttach_PutsRequirementInReview(t *testing.T) {
	e := newEnv(t)
	client := e.newClient(t, "Abarrotes El Sol")
	req := e.requirement(t, client.ID, "Acta Constitutiva")

	got, err := e.requirementSvc.UploadAndAttach(e.ctx(), req.ID, upload(client.ID, "acta.pdf", "%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, enum.RequirementStatusInReview, got.Status)
	require.NotNil(t, got.DocumentID)
	doc := e.documents.docs[*got.DocumentID]
	root, _ := e.folders.FindRoot(e.ctx(), client.ID, "Licencia")
	require.NotNil(t, root)
	assert.Equal(t, root.ID, *doc.FolderID)
	assert.True(t, e.files.Has(doc.StorageKey))
}

func TestTrashDocument_ResetsRequirements(t *testing.T) {
	e := newEnv(t)
	client := e.newClient(t, "Abarrotes El Sol")
	req := e.requirement(t, client.ID, "Poder Notarial")

	attached, err := e.requirementSvc.UploadAndAttach(e.ctx(), req.ID, upload(client.ID, "poder.pdf", "%PDF"))
	require.NoError(t, err)
	_, err = e.requirementSvc.Approve(e.ctx(), req.ID)
	require.NoError(t, err)

	doc, err := e.driveSvc.TrashDocument(e.ctx(), *attached.DocumentID)
	require.NoError(t, err)
	assert.True(t, doc.InTrash)
	assert.NotNil(t, doc.TrashedAt)

	after := e.requirement(t, client.ID, "Poder Notarial")
	assert.Equal(t, enum.RequirementStatusPending, after.Status)
	assert.Nil(t, after.DocumentID)
	assert.Nil(t, after.ReviewedBy)

	// a trashed document cannot be attached again
	_, err = e.requirementSvc.AttachDocument(e.ctx(), req.ID, doc.ID)
	assert.True(t, apperror.HasCode(err, http.StatusNotFound))

	restored, err := e.driveSvc.RestoreDocument(e.ctx(), doc.ID)
	require.NoError(t, err)
	assert.False(t, restored.InTrash)
	assert.Equal(t, enum.RequirementStatusPending, e.requirement(t, client.ID, "Poder Notarial").Status)
}

func TestEmptyTrash_RemovesFiles(t *testing.T) {
	e := newEnv(t)
	client := e.newClient(t, "Abarrotes El Sol")

	doc, err := e.driveSvc.UploadDocument(e.ctx(), upload(client.ID, "borrador.docx", "draft"))
	require.NoError(t, err)
	_, err = e.driveSvc.TrashDocument(e.ctx(), doc.ID)
	require.NoError(t, err)

	n, err := e.driveSvc.EmptyTrash(e.ctx(), &client.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, e.documents.docs)
	assert.False(t, e.files.Has(doc.StorageKey))
}

func TestUploadDocument_EnforcesSizeLimit(t *testing.T) {
	e := newEnv(t)
	client := e.newClient(t, "Abarrotes El Sol")

	in := upload(client.ID, "grande.pdf", strings.Repeat("x", 1<<20+1))
	in.Size = 0 // declared size unknown; the stream is still capped
	_, err := e.driveSvc.UploadDocument(e.ctx(), in)
	assert.True(t, apperror.HasCode(err, http.StatusUnprocessableEntity))
	assert.Empty(t, e.documents.docs)
}

func TestAttachDocument_OtherClientIsRejected(t *testing.T) {
	e := newEnv(t)
	a := e.newClient(t, "Abarrotes El Sol")
	b := e.newClient(t, "Ferretería Norte")

	doc, err := e.driveSvc.UploadDocument(e.ctx(), upload(b.ID, "ine.pdf", "%PDF"))
	require.NoError(t, err)

	_, err = e.requirementSvc.AttachDocument(e.ctx(), e.requirement(t, a.ID, "INE Representante").ID, doc.ID)
	require.Error(t, err)
	assert.Equal(t, "document_id", apperror.GetAppError(err).Errors[0].Field)
}

func TestApprove_NeedsDocument(t *testing.T) {
	e := newEnv(t)
	client := e.newClient(t, "Abarrotes El Sol")

	_, err := e.requirementSvc.Approve(e.ctx(), e.requirement(t, client.ID, "Uso de Suelo").ID)
	assert.True(t, apperror.HasCode(err, http.StatusUnprocessableEntity))
}

func TestGroupRequirements_Progress(t *testing.T) {
	reqs := []entity.Requirement{
		{Category: "Funcionamiento", Name: "Uso de Suelo", Status: enum.RequirementStatusApproved},
		{Category: "Licencia", Name: "Acta Constitutiva", Status: enum.RequirementStatusApproved},
		{Category: "Licencia", Name: "Poder Notarial", Status: enum.RequirementStatusInReview},
	}
	groups := GroupRequirements(reqs)

	require.Len(t, groups, 2)
	assert.Equal(t, "Licencia", groups[0].Category)
	assert.Equal(t, 1, groups[0].Approved)
	assert.Equal(t, 50, groups[0].Progress)
	assert.Equal(t, 100, groups[1].Progress)
}
