package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
)

// DriveHandler handles client folders, documents and requirement checklists
type DriveHandler struct {
	driveService       *service.DriveService
	requirementService *service.RequirementService
}

// NewDriveHandler creates a new drive handler
func NewDriveHandler(driveService *service.DriveService, requirementService *service.RequirementService) *DriveHandler {
	return &DriveHandler{driveService: driveService, requirementService: requirementService}
}

func formUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.PostForm(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

// uploadInput reads the multipart "file" field. The caller closes the
// returned closer once the service is done with the content.
func uploadInput(c *gin.Context, clientID uuid.UUID) (*service.UploadInput, func(), bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperror.NewFieldError("file", "A file is required"))
		return nil, nil, false
	}
	folderID, ok := formUUID(c, "folder_id")
	if !ok {
		return nil, nil, false
	}
	matterID, ok := formUUID(c, "matter_id")
	if !ok {
		return nil, nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Unable to read the uploaded file")
		return nil, nil, false
	}
	return &service.UploadInput{
		ClientID:    clientID,
		FolderID:    folderID,
		MatterID:    matterID,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     file,
	}, func() { file.Close() }, true
}

// ListContents lists one level of a client's drive
// @Summary Browse Drive
// @Tags drive
// @Security BearerAuth
// @Produce json
// @Param id path string true "Client ID"
// @Param folder_id query string false "Folder to open; root when omitted"
// @Success 200 {object} response.APIResponse
// @Router /clients/{id}/drive [get]
func (h *DriveHandler) ListContents(c *gin.Context) {
	clientID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	folderID, ok := queryUUID(c, "folder_id")
	if !ok {
		return
	}
	contents, err := h.driveService.ListContents(c.Request.Context(), clientID, folderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Drive contents retrieved successfully", contents)
}

// CreateFolder creates a folder in a client's drive
// @Summary Create Folder
// @Tags drive
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param request body request.FolderRequest true "Folder"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse "Name already used in the parent"
// @Router /clients/{id}/folders [post]
func (h *DriveHandler) CreateFolder(c *gin.Context) {
	clientID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.FolderRequest
	if !bindJSON(c, &req) {
		return
	}
	folder, err := h.driveService.CreateFolder(c.Request.Context(), clientID, req.ParentID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Folder created successfully", folder)
}

// RenameFolder renames a folder
// @Summary Rename Folder
// @Tags drive
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Folder ID"
// @Param request body request.RenameRequest true "Name"
// @Success 200 {object} response.APIResponse
// @Router /folders/{id} [put]
func (h *DriveHandler) RenameFolder(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.RenameRequest
	if !bindJSON(c, &req) {
		return
	}
	folder, err := h.driveService.RenameFolder(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Folder renamed successfully", folder)
}

// DeleteFolder removes an empty folder
// @Summary Delete Folder
// @Tags drive
// @Security BearerAuth
// @Param id path string true "Folder ID"
// @Success 204
// @Failure 409 {object} response.APIResponse "Folder is not empty"
// @Router /folders/{id} [delete]
func (h *DriveHandler) DeleteFolder(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.driveService.DeleteFolder(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadDocument stores a file in a client's drive
// @Summary Upload Document
// @Tags drive
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Client ID"
// @Param file formData file true "Document"
// @Param folder_id formData string false "Folder ID"
// @Param matter_id formData string false "Matter ID"
// @Success 201 {object} response.APIResponse
// @Router /clients/{id}/documents [post]
func (h *DriveHandler) UploadDocument(c *gin.Context) {
	clientID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	input, done, ok := uploadInput(c, clientID)
	if !ok {
		return
	}
	defer done()

	doc, err := h.driveService.UploadDocument(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Document uploaded successfully", doc)
}

// Download streams a document
// @Summary Download Document
// @Tags drive
// @Security BearerAuth
// @Produce octet-stream
// @Param id path string true "Document ID"
// @Param inline query bool false "Preview instead of download"
// @Success 200 {file} binary
// @Router /documents/{id}/download [get]
func (h *DriveHandler) Download(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	artifact, err := h.driveService.OpenDocument(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	inline := false
	if v := queryBool(c, "inline"); v != nil {
		inline = *v
	}
	sendArtifact(c, artifact, inline)
}

// UpdateDocument renames or moves a document
// @Summary Update Document
// @Tags drive
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body request.UpdateDocumentRequest true "Changes"
// @Success 200 {object} response.APIResponse
// @Router /documents/{id} [put]
func (h *DriveHandler) UpdateDocument(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.UpdateDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.driveService.UpdateDocument(c.Request.Context(), id, req.Name, req.FolderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Document updated successfully", doc)
}

// TrashDocument moves a document to the trash
// @Summary Trash Document
// @Tags drive
// @Security BearerAuth
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.APIResponse
// @Router /documents/{id} [delete]
func (h *DriveHandler) TrashDocument(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.driveService.TrashDocument(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Document moved to trash", doc)
}

// RestoreDocument takes a document out of the trash
// @Summary Restore Document
// @Tags drive
// @Security BearerAuth
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.APIResponse
// @Router /documents/{id}/restore [post]
func (h *DriveHandler) RestoreDocument(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.driveService.RestoreDocument(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Document restored successfully", doc)
}

// PurgeDocument deletes a trashed document and its file
// @Summary Delete Document Permanently
// @Tags drive
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 204
// @Router /trash/{id} [delete]
func (h *DriveHandler) PurgeDocument(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.driveService.DeleteDocument(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTrash lists trashed documents
// @Summary List Trash
// @Tags drive
// @Security BearerAuth
// @Produce json
// @Param client_id query string false "Client ID"
// @Success 200 {object} response.APIResponse
// @Router /trash [get]
func (h *DriveHandler) ListTrash(c *gin.Context) {
	clientID, ok := queryUUID(c, "client_id")
	if !ok {
		return
	}
	docs, err := h.driveService.ListTrash(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Trash retrieved successfully", docs)
}

// EmptyTrash deletes every trashed document
// @Summary Empty Trash
// @Tags drive
// @Security BearerAuth
// @Produce json
// @Param client_id query string false "Client ID"
// @Success 200 {object} response.APIResponse
// @Router /trash [delete]
func (h *DriveHandler) EmptyTrash(c *gin.Context) {
	clientID, ok := queryUUID(c, "client_id")
	if !ok {
		return
	}
	removed, err := h.driveService.EmptyTrash(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Trash emptied", gin.H{"deleted": removed})
}

// ListRequirements returns a client's checklist grouped by category
// @Summary Client Requirements
// @Tags requirements
// @Security BearerAuth
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.APIResponse
// @Router /clients/{id}/requirements [get]
func (h *DriveHandler) ListRequirements(c *gin.Context) {
	clientID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	groups, err := h.requirementService.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Requirements retrieved successfully", groups)
}

// AttachDocument satisfies a requirement with a document already in the drive
// @Summary Attach Document
// @Tags requirements
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Requirement ID"
// @Param request body request.AttachDocumentRequest true "Document"
// @Success 200 {object} response.APIResponse
// @Router /requirements/{id}/attach [post]
func (h *DriveHandler) AttachDocument(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.AttachDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	requirement, err := h.requirementService.AttachDocument(c.Request.Context(), id, req.DocumentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Document attached successfully", requirement)
}

// UploadRequirement uploads a file and attaches it to the requirement
// @Summary Upload Requirement Document
// @Tags requirements
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Requirement ID"
// @Param file formData file true "Document"
// @Success 200 {object} response.APIResponse
// @Router /requirements/{id}/upload [post]
func (h *DriveHandler) UploadRequirement(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	// the service fills in the requirement's client
	input, done, ok := uploadInput(c, uuid.Nil)
	if !ok {
		return
	}
	defer done()

	requirement, err := h.requirementService.UploadAndAttach(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Document uploaded successfully", requirement)
}

// ApproveRequirement marks a delivered requirement as approved
// @Summary Approve Requirement
// @Tags requirements
// @Security BearerAuth
// @Produce json
// @Param id path string true "Requirement ID"
// @Success 200 {object} response.APIResponse
// @Router /requirements/{id}/approve [post]
func (h *DriveHandler) ApproveRequirement(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	requirement, err := h.requirementService.Approve(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Requirement approved", requirement)
}

// ResetRequirement returns a requirement to pending and detaches its document
// @Summary Reset Requirement
// @Tags requirements
// @Security BearerAuth
// @Produce json
// @Param id path string true "Requirement ID"
// @Success 200 {object} response.APIResponse
// @Router /requirements/{id}/reset [post]
func (h *DriveHandler) ResetRequirement(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	requirement, err := h.requirementService.Reset(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Requirement reset", requirement)
}
