/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package backups

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jerry-enebeli/bankbook/config"
	"github.com/jerry-enebeli/bankbook/database"
)

// BackupManager writes point-in-time copies of the ledger database under
// <backup_dir>/<YYYY-MM-DD>/.
type BackupManager struct {
	Config *config.Configuration
	now    func() time.Time
}

func NewBackupManager(cnf *config.Configuration) *BackupManager {
	return &BackupManager{Config: cnf, now: time.Now}
}

func (bm *BackupManager) dayDir(day time.Time) string {
	return filepath.Join(bm.Config.BackupDir, day.Format("2006-01-02"))
}

// BackupToDisk copies the database into today's backup directory and
// returns the path of the copy.
func (bm *BackupManager) BackupToDisk(ctx context.Context) (string, error) {
	now := bm.now()
	dir := bm.dayDir(now)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "create backup directory")
	}

	source := bm.Config.DataSource
	switch source.Driver {
	case "sqlite3":
		path := filepath.Join(dir, fmt.Sprintf("bankbook-%s-backup.db", now.Format("150405")))
		if err := vacuumInto(ctx, source, path); err != nil {
			return "", err
		}
		return path, nil
	case "postgres":
		path := filepath.Join(dir, fmt.Sprintf("bankbook-%s-backup.sql", now.Format("150405")))
		if err := pgDump(ctx, source.Dns, path); err != nil {
			return "", err
		}
		return path, nil
	default:
		return "", fmt.Errorf("backups are not supported for driver %q", source.Driver)
	}
}

// vacuumInto writes a consistent copy of a sqlite database to path.
func vacuumInto(ctx context.Context, source config.DataSourceConfig, path string) error {
	db, err := database.OpenDB(source)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "VACUUM INTO $1", path); err != nil {
		return errors.Wrapf(err, "copy database to %s", path)
	}
	logrus.Infof("Backup successful: %s", path)
	return nil
}

func pgDump(ctx context.Context, dns, path string) error {
	parsedURL, err := url.Parse(dns)
	if err != nil {
		return errors.Wrap(err, "parse data source dns")
	}
	if parsedURL.User == nil {
		return errors.New("data source dns carries no user")
	}

	dbUser := parsedURL.User.Username()
	dbPassword, _ := parsedURL.User.Password()
	dbHost, dbPort, err := net.SplitHostPort(parsedURL.Host)
	if err != nil {
		return errors.Wrap(err, "parse data source host")
	}
	dbName := strings.TrimPrefix(parsedURL.Path, "/")

	cmd := exec.CommandContext(ctx, "pg_dump", "-U", dbUser, "-d", dbName, "-f", path)
	cmd.Env = append(os.Environ(), "PGHOST="+dbHost, "PGPORT="+dbPort, "PGUSER="+dbUser, "PGPASSWORD="+dbPassword)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "pg_dump failed: %s", strings.TrimSpace(stderr.String()))
	}
	logrus.Infof("Backup successful: %s", path)
	return nil
}

// Archive zips the backups taken on day into <backup_dir>/<YYYY-MM-DD>.zip
// and returns the archive's path.
func (bm *BackupManager) Archive(day time.Time) (string, error) {
	dir := bm.dayDir(day)
	if _, err := os.Stat(dir); err != nil {
		return "", errors.Wrapf(err, "no backups for %s", day.Format("2006-01-02"))
	}
	dest := dir + ".zip"
	if err := zipDir(dir, dest); err != nil {
		_ = os.Remove(dest)
		return "", err
	}
	return dest, nil
}

// UploadToS3 copies the file at src to the configured bucket under
// <YYYY-MM-DD>/<file name> and returns the object key. A custom S3 endpoint
// is addressed path-style.
func (bm *BackupManager) UploadToS3(ctx context.Context, src string) (string, error) {
	cnf := bm.Config
	if cnf.S3BucketName == "" {
		return "", errors.New("no s3 bucket configured")
	}

	awsConfig := &aws.Config{Region: aws.String(cnf.S3Region)}
	if cnf.AwsAccessKeyId != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cnf.AwsAccessKeyId, cnf.AwsSecretAccessKey, "")
	}
	if cnf.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cnf.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return "", errors.Wrap(err, "create aws session")
	}

	file, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer file.Close()

	key := path.Join(filepath.Base(filepath.Dir(src)), filepath.Base(src))
	if strings.HasSuffix(src, ".zip") {
		key = filepath.Base(src)
	}
	_, err = s3.New(sess).PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(cnf.S3BucketName),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return "", errors.Wrapf(err, "upload %s to s3://%s", src, cnf.S3BucketName)
	}
	logrus.Infof("Uploaded %s to s3://%s/%s", src, cnf.S3BucketName, key)
	return key, nil
}

func zipDir(srcDir, destZip string) error {
	zipFile, err := os.Create(destZip)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	writer := zip.NewWriter(zipFile)

	err = filepath.Walk(srcDir, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(srcDir, filePath)
		if err != nil {
			return err
		}
		zipFileWriter, err := writer.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		srcFile, err := os.Open(filePath)
		if err != nil {
			return err
		}
		defer srcFile.Close()

		_, err = io.Copy(zipFileWriter, srcFile)
		return err
	})
	if err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}
