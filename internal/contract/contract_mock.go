package contract

import (
	"context"
	"iter"
	"time"

	"github.com/codesight/codesight/schema"
	"github.com/stretchr/testify/mock"
)

// MockHostingClient is a mock implementation of HostingClient for testing.
type MockHostingClient struct {
	mock.Mock
}

var _ HostingClient = &MockHostingClient{} // Compile-time check

// Resolve implements the HostingClient interface.
func (m *MockHostingClient) Resolve(ctx context.Context, owner, name string) (schema.RepositoryRef, error) {
	ret := m.Called(ctx, owner, name)
	ref, _ := ret.Get(0).(schema.RepositoryRef)
	return ref, ret.Error(1)
}

// GetRepoMetadata implements the HostingClient interface.
func (m *MockHostingClient) GetRepoMetadata(ctx context.Context, ref schema.RepositoryRef) (schema.RepoInfo, error) {
	ret := m.Called(ctx, ref)
	info, _ := ret.Get(0).(schema.RepoInfo)
	return info, ret.Error(1)
}

// ListCommits implements the HostingClient interface.
func (m *MockHostingClient) ListCommits(ctx context.Context, ref schema.RepositoryRef) iter.Seq2[schema.CommitRecord, error] {
	ret := m.Called(ctx, ref)
	seq, _ := ret.Get(0).(iter.Seq2[schema.CommitRecord, error])
	if seq == nil {
		return SliceSeq[schema.CommitRecord](nil)
	}
	return seq
}

// ListPullRequests implements the HostingClient interface.
func (m *MockHostingClient) ListPullRequests(ctx context.Context, ref schema.RepositoryRef) iter.Seq2[schema.PullRequestRecord, error] {
	ret := m.Called(ctx, ref)
	seq, _ := ret.Get(0).(iter.Seq2[schema.PullRequestRecord, error])
	if seq == nil {
		return SliceSeq[schema.PullRequestRecord](nil)
	}
	return seq
}

// GetFileContent implements the HostingClient interface.
func (m *MockHostingClient) GetFileContent(ctx context.Context, ref schema.RepositoryRef, path string) (schema.FileContent, error) {
	ret := m.Called(ctx, ref, path)
	content, _ := ret.Get(0).(schema.FileContent)
	return content, ret.Error(1)
}

// MockModelClient is a mock implementation of ModelClient for testing.
type MockModelClient struct {
	mock.Mock
}

var _ ModelClient = &MockModelClient{} // Compile-time check

// Complete implements the ModelClient interface.
func (m *MockModelClient) Complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	ret := m.Called(ctx, systemPrompt, userContent)
	return ret.String(0), ret.Error(1)
}

// MockArchiveStore is a mock implementation of ArchiveStore for testing.
type MockArchiveStore struct {
	mock.Mock
}

var _ ArchiveStore = &MockArchiveStore{} // Compile-time check

// RecordReport implements the ArchiveStore interface.
func (m *MockArchiveStore) RecordReport(report schema.AnalysisReport, startTime, endTime time.Time, configParams map[string]any) (int64, error) {
	ret := m.Called(report, startTime, endTime, configParams)
	id, _ := ret.Get(0).(int64)
	return id, ret.Error(1)
}

// GetStatus implements the ArchiveStore interface.
func (m *MockArchiveStore) GetStatus() (schema.ArchiveStatus, error) {
	ret := m.Called()
	status, _ := ret.Get(0).(schema.ArchiveStatus)
	return status, ret.Error(1)
}

// GetAllRuns implements the ArchiveStore interface.
func (m *MockArchiveStore) GetAllRuns() ([]schema.ArchivedRunRecord, error) {
	ret := m.Called()
	runs, _ := ret.Get(0).([]schema.ArchivedRunRecord)
	return runs, ret.Error(1)
}

// GetAllHotspots implements the ArchiveStore interface.
func (m *MockArchiveStore) GetAllHotspots() ([]schema.ArchivedHotspotRecord, error) {
	ret := m.Called()
	rows, _ := ret.Get(0).([]schema.ArchivedHotspotRecord)
	return rows, ret.Error(1)
}

// Clear implements the ArchiveStore interface.
func (m *MockArchiveStore) Clear() error {
	return m.Called().Error(0)
}

// Close implements the ArchiveStore interface.
func (m *MockArchiveStore) Close() error {
	return m.Called().Error(0)
}
