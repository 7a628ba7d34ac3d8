// Package salesforce talks to a Salesforce org: credentials via the sf CLI
// and file uploads via the ContentVersion REST API.
//
// This package handles:
//   - Credential retrieval by shelling out to "sf org display --json"
//   - Single multipart POST uploads (metadata part + streamed binary part)
//   - Failure classification: timeout, connection failure, remote rejection
//   - Post-upload size verification via a follow-up GET
//
// Uploads are deliberately single-shot. The ContentVersion API has no chunk
// append or resume semantics, so there is no retry, no chunking, and the
// configured timeout is the only cancellation mechanism.
//
// # Usage
//
//	creds, err := salesforce.CLIProvider{}.Fetch(ctx)
//	client := salesforce.NewClient(creds, salesforce.Options{})
//
//	task, err := salesforce.NewTask("data.tsv", 60*time.Minute)
//	result, err := client.Upload(ctx, task, salesforce.UploadOptions{
//	    OnProgress: reporter.OnSample,
//	})
//	if result.Success {
//	    verification, err := client.Verify(ctx, result.RemoteID, task.Size)
//	    // verification.Matches
//	}
package salesforce
