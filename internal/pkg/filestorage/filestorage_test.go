package filestorage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["photo"][0]
}

func TestCleanRef(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "participants/a.jpg", want: "participants/a.jpg"},
		{ref: "/participants/a.jpg", want: "participants/a.jpg"},
		{ref: "../../etc/passwd", want: "etc/passwd"},
		{ref: `participants\b.png`, want: "participants/b.png"},
		{ref: "", wantErr: true},
		{ref: "/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := cleanRef(tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidReference)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	ref, err := ls.SaveFile(ctx, uploadHeader(t, "Foto.JPG", []byte("jpeg")), "participants")
	require.NoError(t, err)
	assert.Regexp(t, `^participants/[0-9a-f-]{36}\.jpg$`, ref)
	assert.Equal(t, "/uploads/"+ref, ls.URL(ref))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	ok, err := ls.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, ls.DeleteFile(ctx, ref))
	ok, err = ls.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting twice is fine
	assert.NoError(t, ls.DeleteFile(ctx, ref))
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, awserr.New("NotFound", "not found", nil)
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3StorageLifecycle(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{objects: map[string][]byte{}}
	st := newS3Storage(client, S3Config{Bucket: "fotos", Region: "sa-east-1", Prefix: "/checkin/"})

	ref, err := st.SaveFile(ctx, uploadHeader(t, "a.png", []byte("png")), "participants")
	require.NoError(t, err)
	assert.Contains(t, client.objects, "checkin/"+ref)
	assert.Equal(t, "https://fotos.s3.sa-east-1.amazonaws.com/checkin/"+ref, st.URL(ref))

	ok, err := st.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, st.DeleteFile(ctx, ref))
	ok, err = st.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, ok)
}
