package email

const appName = "LexDesk"

const passwordResetTemplate = `
<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
    <title>Restablece tu contraseña</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="background-color: #1f2a44; padding: 32px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 26px;">{{.AppName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 32px; color: #4a5568; font-size: 16px; line-height: 1.6;">
                <p>Hola,</p>
                <p>Recibimos una solicitud para restablecer la contraseña de <strong>{{.Email}}</strong>.
                   El enlace expira en <strong>1 hora</strong>.</p>
                <p style="text-align: center; margin: 32px 0;">
                    <a href="{{.ResetURL}}" style="padding: 14px 28px; background-color: #1f2a44; color: #ffffff; text-decoration: none; border-radius: 8px;">Restablecer contraseña</a>
                </p>
                <p style="font-size: 14px; color: #718096;">Si no solicitaste el cambio puedes ignorar este correo.</p>
                <p style="font-size: 14px; color: #718096; word-break: break-all;">{{.ResetURL}}</p>
            </td>
        </tr>
    </table>
</body>
</html>
`

const documentTemplate = `
<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="background-color: #1f2a44; padding: 24px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 22px;">{{.AppName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 32px; color: #4a5568; font-size: 16px; line-height: 1.6;">
                <p>{{.Greeting}}</p>
                <p>{{.Body}}</p>
                <p style="font-size: 14px; color: #718096;">Encontrará el documento adjunto a este correo.</p>
            </td>
        </tr>
    </table>
</body>
</html>
`
